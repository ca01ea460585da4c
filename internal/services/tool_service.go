package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
)

// maxSuggestions caps how many tools a suggestion query returns.
const maxSuggestions = 3

// ToolService encapsulates the business logic for the shared toolbox.
type ToolService struct {
	repo *repository.ToolRepository
}

// NewToolService creates a new instance of ToolService.
func NewToolService(repo *repository.ToolRepository) *ToolService {
	return &ToolService{repo: repo}
}

// CreateTool stores a new tool authored by the caller.
func (s *ToolService) CreateTool(ctx context.Context, tool *models.Tool) (*models.Tool, error) {
	if tool.Title == "" || tool.Description == "" {
		return nil, fmt.Errorf("tool title and description are required")
	}

	created, err := s.repo.CreateTool(ctx, tool)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool: %v", err)
	}
	return created, nil
}

// ListTools retrieves the whole toolbox.
func (s *ToolService) ListTools(ctx context.Context) ([]models.Tool, error) {
	tools, err := s.repo.GetAllTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tools: %v", err)
	}
	return tools, nil
}

// SuggestTools scores every tool against the query and returns the top
// matches. A title hit scores 2, each keyword contained in the query scores
// 1, a description hit scores 1; tools scoring 0 are excluded.
func (s *ToolService) SuggestTools(ctx context.Context, query string) ([]models.Tool, error) {
	tools, err := s.repo.GetAllTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tools: %v", err)
	}

	q := strings.ToLower(query)

	type scoredTool struct {
		score int
		tool  models.Tool
	}
	var scored []scoredTool

	for _, tool := range tools {
		score := 0
		if strings.Contains(strings.ToLower(tool.Title), q) {
			score += 2
		}
		for _, kw := range tool.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				score++
			}
		}
		if strings.Contains(strings.ToLower(tool.Description), q) {
			score++
		}
		if score > 0 {
			scored = append(scored, scoredTool{score: score, tool: tool})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	result := make([]models.Tool, 0, maxSuggestions)
	for i, st := range scored {
		if i == maxSuggestions {
			break
		}
		result = append(result, st.tool)
	}
	return result, nil
}
