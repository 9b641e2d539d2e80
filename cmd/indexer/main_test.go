package main

import (
	"testing"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestSplitByPublication(t *testing.T) {
	articles := []*entities.Article{
		{ID: "a1", Slug: "tooth-decay", Status: entities.ArticleStatusPublished},
		{ID: "a2", Slug: "old-draft", Status: entities.ArticleStatusDraft},
		nil,
		{ID: "a3", Slug: "gum-disease", Status: entities.ArticleStatusPublished},
		{ID: "a4", Slug: "retired-guide", Status: entities.ArticleStatusArchived},
	}

	publishable, stale := splitByPublication(articles)

	assert.Len(t, publishable, 2)
	assert.Equal(t, "tooth-decay", publishable[0].Slug)
	assert.Equal(t, "gum-disease", publishable[1].Slug)

	assert.Len(t, stale, 2)
	assert.Equal(t, "a2", stale[0].ID)
	assert.Equal(t, "a4", stale[1].ID)
}

func TestSplitByPublication_Empty(t *testing.T) {
	publishable, stale := splitByPublication(nil)

	assert.Empty(t, publishable)
	assert.Empty(t, stale)
}
