package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestFileEntrySchema(t *testing.T) {
	s, err := schema.Parse(&FileEntry{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	require.Len(t, s.PrimaryFields, 1)
	require.Equal(t, "key", s.PrimaryFields[0].DBName)

	for _, column := range []string{"key", "file_name", "timestamp"} {
		require.NotNil(t, s.LookUpField(column), "column %s", column)
	}
	require.Len(t, s.DBNames, 3)
}
