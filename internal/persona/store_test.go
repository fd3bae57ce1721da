package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	items := Catalog()
	require.Len(t, items, 5)

	want := []struct {
		personaType string
		name        string
	}{
		{"anxiety", "Dr. Sarah"},
		{"depression", "Dr. Michael"},
		{"academic_stress", "Dr. Priya"},
		{"relationships", "Dr. Emma"},
		{"general", "Dr. Alex"},
	}
	for i, w := range want {
		assert.Equal(t, w.personaType, items[i].Type)
		assert.Equal(t, w.name, items[i].Name)
		assert.NotEmpty(t, items[i].Specialization)
		assert.NotEmpty(t, items[i].Description)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(Catalog())

	p, ok := store.FindByType("academic_stress")
	require.True(t, ok)
	assert.Equal(t, "Academic & Study Stress", p.Specialization)

	_, ok = store.FindByType("astrology")
	assert.False(t, ok)

	list := store.List()
	list[0].Name = "changed"
	assert.Equal(t, "Dr. Sarah", store.List()[0].Name)
}

func TestSystemPrompt(t *testing.T) {
	p, _ := NewMemoryStore(Catalog()).FindByType("anxiety")

	prompt := SystemPrompt(p, "english")
	assert.Contains(t, prompt, "Dr. Sarah")
	assert.Contains(t, prompt, "Anxiety & Panic Disorders")
	assert.NotContains(t, prompt, "Reply in")

	assert.Contains(t, SystemPrompt(p, "hindi"), "Reply in hindi.")
}
