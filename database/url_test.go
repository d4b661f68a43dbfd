package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		database string
		want     string
	}{
		{
			name:     "no database name keeps url",
			baseURL:  "postgres://u:p@db:5432",
			database: "",
			want:     "postgres://u:p@db:5432",
		},
		{
			name:     "appends database and sslmode",
			baseURL:  "postgres://u:p@db:5432/",
			database: "typer",
			want:     "postgres://u:p@db:5432/typer?sslmode=disable",
		},
		{
			name:     "keeps existing query parameters",
			baseURL:  "postgres://u:p@db:5432?connect_timeout=5",
			database: "typer",
			want:     "postgres://u:p@db:5432/typer?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "respects explicit sslmode",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			database: "typer",
			want:     "postgres://u:p@db:5432/typer?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstructDatabaseURL(tt.baseURL, tt.database))
		})
	}
}
