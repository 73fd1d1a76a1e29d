package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"tube-pulse/domain/model"
)

func TestSnapshotRepository_AppendBulk(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewSnapshotRepository(db)
	recordedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO stats_snapshots (video_id, stats, recorded_at) VALUES ($1,$2,$3)`))
	prepared.ExpectExec().
		WithArgs("vid-1", []byte(`{"likes":"56","views":"1234"}`), recordedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prepared.ExpectExec().
		WithArgs("vid-2", []byte(`{"likes":"2","views":"10"}`), recordedAt).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, err := repository.AppendBulk(context.Background(), []model.StatsSnapshot{
		{VideoID: "vid-1", Stats: map[string]string{"views": "1234", "likes": "56"}, RecordedAt: recordedAt},
		{VideoID: "vid-2", Stats: map[string]string{"views": "10", "likes": "2"}, RecordedAt: recordedAt},
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_AppendBulk_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewSnapshotRepository(db)
	count, err := repository.AppendBulk(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_LatestPerVideo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewSnapshotRepository(db)
	recordedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT ON (video_id) id, video_id, stats, recorded_at FROM stats_snapshots WHERE video_id = ANY($1) ORDER BY video_id, recorded_at DESC, id DESC`)).
		WithArgs(pq.Array([]string{"vid-1", "vid-2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_id", "stats", "recorded_at"}).
			AddRow(int64(9), "vid-1", []byte(`{"views":"30","likes":"3"}`), recordedAt).
			AddRow(int64(7), "vid-2", []byte(`{"views":"20","likes":"2"}`), recordedAt))

	snapshots, err := repository.LatestPerVideo(context.Background(), []string{"vid-1", "vid-2"})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, "vid-1", snapshots[0].VideoID)
	require.Equal(t, "30", snapshots[0].Stats["views"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_LatestPerVideo_AllVideos(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewSnapshotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT ON (video_id) id, video_id, stats, recorded_at FROM stats_snapshots ORDER BY video_id, recorded_at DESC, id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_id", "stats", "recorded_at"}))

	snapshots, err := repository.LatestPerVideo(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, snapshots)
	require.NoError(t, mock.ExpectationsWereMet())
}
