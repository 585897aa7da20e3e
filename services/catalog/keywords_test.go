package catalog

import (
	"reflect"
	"testing"
)

func TestBuildSearchKeywords(t *testing.T) {
	tests := []struct {
		name                           string
		svcName, description, category string
		tags                           []string
		want                           []string
	}{
		{
			name:        "splits and lowercases",
			svcName:     "Deep Clean",
			description: "Full home  cleaning",
			category:    "Cleaning",
			tags:        []string{" Eco ", "PETS"},
			want:        []string{"deep", "clean", "full", "home", "cleaning", "eco", "pets"},
		},
		{
			name:        "deduplicates keeping first occurrence",
			svcName:     "Garden garden",
			description: "Garden care",
			category:    "garden",
			tags:        []string{"care", "lawn"},
			want:        []string{"garden", "care", "lawn"},
		},
		{
			name: "empty input",
			want: []string{},
		},
		{
			name:     "drops blank tags",
			category: "Plumbing",
			tags:     []string{"", "   "},
			want:     []string{"plumbing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchKeywords(tt.svcName, tt.description, tt.category, tt.tags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
