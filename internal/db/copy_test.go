package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "run_observations", []string{"run_id", "platform"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"run_observations"}, []string{"run_id", "platform"}).WillReturnResult(3)

	rows := [][]any{{"r1", "chatgpt"}, {"r1", "perplexity"}, {"r1", "chatgpt"}}
	n, err := CopyFrom(context.Background(), mock, "run_observations", []string{"run_id", "platform"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"run_observations"}, []string{"run_id"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"r1"}}
	_, err = CopyFrom(context.Background(), mock, "run_observations", []string{"run_id"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO run_observations")
	assert.NoError(t, mock.ExpectationsWereMet())
}
