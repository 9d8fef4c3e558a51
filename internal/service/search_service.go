package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"nyayanet.in/forum/internal/model"
)

const discussionIndex = "discussions"

type SearchService interface {
	IndexDiscussion(discussion *model.Discussion) error
	DeleteDiscussion(id string) error
	SearchDiscussions(query string, page, limit int) ([]uuid.UUID, int64, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        discussionIndex,
		PrimaryKey: "id",
	})
	if err != nil {
		// Exists already or meilisearch is down; searches degrade to the DB
		log.Printf("meilisearch index init: %v", err)
	}

	_, err = s.client.Index(discussionIndex).UpdateSearchableAttributes(&[]string{
		"title", "description", "tags", "category",
	})
	if err != nil {
		log.Printf("meilisearch searchable attributes: %v", err)
	}
}

func (s *searchService) IndexDiscussion(discussion *model.Discussion) error {
	doc := map[string]interface{}{
		"id":          discussion.ID.String(),
		"title":       s.sanitizer.Sanitize(discussion.Title),
		"description": s.sanitizer.Sanitize(discussion.Description),
		"category":    discussion.Category,
		"tags":        discussion.Tags,
		"created_at":  discussion.CreatedAt.Unix(),
	}

	_, err := s.client.Index(discussionIndex).AddDocuments([]map[string]interface{}{doc}, nil)
	if err != nil {
		return fmt.Errorf("failed to index discussion: %w", err)
	}
	return nil
}

func (s *searchService) DeleteDiscussion(id string) error {
	_, err := s.client.Index(discussionIndex).DeleteDocument(id)
	return err
}

func (s *searchService) SearchDiscussions(query string, page, limit int) ([]uuid.UUID, int64, error) {
	res, err := s.client.Index(discussionIndex).Search(strings.TrimSpace(query), &meilisearch.SearchRequest{
		Offset: int64((page - 1) * limit),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var idStr string
		if err := json.Unmarshal(raw, &idStr); err != nil {
			continue
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, res.EstimatedTotalHits, nil
}
