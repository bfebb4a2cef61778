package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService 接口定义了基于搜索索引的档案检索操作。
// 助手触发的搜索与列表页的搜索框都走这里；索引不可用时由调用方
// 退回 ProfileService 的数据库路径。
type SearchService interface {
	// SearchTutors 检索导师，返回命中文档与命中总数。
	SearchTutors(ctx context.Context, subject, department string, topK int) ([]model.EsProfile, int, error)
	// SearchTeammates 检索候选队友（不限定导师），按技能/院系过滤。
	SearchTeammates(ctx context.Context, skill, department string, topK int) ([]model.EsProfile, int, error)
	// SearchProfiles 对简介与显示名称做全文检索（自由文本查询的兜底）。
	SearchProfiles(ctx context.Context, query string, topK int) ([]model.EsProfile, int, error)
}

type searchService struct {
	esClient  *elasticsearch.Client
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client, indexName string) SearchService {
	return &searchService{esClient: esClient, indexName: indexName}
}

// SearchTutors 检索导师档案。
// 科目与院系是 keyword 等值过滤，评分高的导师排在前面。
func (s *searchService) SearchTutors(ctx context.Context, subject, department string, topK int) ([]model.EsProfile, int, error) {
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"is_tutor": true}},
	}
	if subject != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"tutor_subjects": subject},
		})
	}
	if department != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"department": department},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []map[string]interface{}{
			{"rating_avg": map[string]interface{}{"order": "desc"}},
			{"rating_count": map[string]interface{}{"order": "desc"}},
		},
		"size": topK,
	}
	return s.execute(ctx, esQuery)
}

// SearchTeammates 检索候选队友档案。
func (s *searchService) SearchTeammates(ctx context.Context, skill, department string, topK int) ([]model.EsProfile, int, error) {
	var filters []map[string]interface{}
	if skill != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"skills": skill},
		})
	}
	if department != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"department": department},
		})
	}
	if len(filters) == 0 {
		filters = append(filters, map[string]interface{}{
			"match_all": map[string]interface{}{},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"size": topK,
	}
	return s.execute(ctx, esQuery)
}

// SearchProfiles 对档案的简介与显示名称做全文检索。
func (s *searchService) SearchProfiles(ctx context.Context, query string, topK int) ([]model.EsProfile, int, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"display_name^2", "bio", "skills", "tutor_subjects"},
			},
		},
		"size": topK,
	}
	return s.execute(ctx, esQuery)
}

// execute 向 Elasticsearch 发送查询并解析命中结果与总数。
func (s *searchService) execute(ctx context.Context, esQuery map[string]interface{}) ([]model.EsProfile, int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, 0, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
		s.esClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, 0, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source model.EsProfile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, 0, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.EsProfile, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, esResponse.Hits.Total.Value, nil
}
