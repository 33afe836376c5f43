package compartimento

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dataharvester/core/database"
	"dataharvester/core/source"
	sourcemocks "dataharvester/core/source/mocks"
	storagemocks "dataharvester/core/storage/mocks"
	"dataharvester/feature/compartimento/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func fakeSource(rows ...source.Row) *sourcemocks.Client {
	src := new(sourcemocks.Client)
	src.On("Fetch", mock.Anything).Return(&source.Payload{Rows: rows, Raw: []byte(`{"rows":[]}`)}, nil)
	return src
}

func TestPipeline_Run(t *testing.T) {
	db := setupTestDB(t)

	first := newRow("Central", "Bloco A", "Faculdade de Letras", "Sala 101")
	first[FieldTipo] = "Sala de aula"
	first[FieldPavimento] = "1.0"
	first[FieldCapacidade] = "40"
	first[FieldArea] = "52,75"

	rows := []source.Row{
		first,
		newRow("Central", "Bloco A", "Faculdade de Letras", "Sala 102"),
		newRow("Central", "Bloco B", "Reitoria", "Gabinete"),
		newRow("Norte", "Bloco A", "Reitoria", "Sala 101"),
	}

	summary, err := NewPipeline(fakeSource(rows...), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 4, summary.RowsFetched)
	assert.Equal(t, 4, summary.CompartimentosProcessed)
	assert.Equal(t, 2, summary.CampusCached)
	assert.Equal(t, 2, summary.UnidadeCached)
	assert.Equal(t, 3, summary.PredioCached)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Duplicates)
	assert.Zero(t, summary.Failed)

	assert.Equal(t, int64(2), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(2), count(t, db, &models.Unidade{}))
	assert.Equal(t, int64(3), count(t, db, &models.Predio{}))
	assert.Equal(t, int64(4), count(t, db, &models.Compartimento{}))

	var campus models.Campus
	require.NoError(t, db.First(&campus, "nome = ?", "Central").Error)
	var predio models.Predio
	require.NoError(t, db.First(&predio, "campusid = ? AND nome = ?", campus.ID, "Bloco A").Error)

	var room models.Compartimento
	require.NoError(t, db.First(&room, "predioid = ? AND nome = ?", predio.ID, "Sala 101").Error)
	assert.Equal(t, "Sala de aula", room.Tipo)
	require.NotNil(t, room.Pavimento)
	assert.Equal(t, 1, *room.Pavimento)
	require.NotNil(t, room.Capacidade)
	assert.Equal(t, 40, *room.Capacidade)
	assert.True(t, room.Area.Valid)
	assert.True(t, room.Area.Decimal.Equal(decimal.RequireFromString("52.75")))

	var bare models.Compartimento
	require.NoError(t, db.First(&bare, "predioid = ? AND nome = ?", predio.ID, "Sala 102").Error)
	assert.Equal(t, models.TipoNaoInformado, bare.Tipo)
	assert.Nil(t, bare.Capacidade)
	assert.False(t, bare.Area.Valid)
}

func TestPipeline_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	row := newRow("Central", "Bloco A", "Reitoria", "Sala 1")
	row[FieldCapacidade] = "30"
	rows := []source.Row{row, newRow("Central", "Bloco A", "Reitoria", "Sala 2")}

	first, err := NewPipeline(fakeSource(rows...), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	var before []models.Compartimento
	require.NoError(t, db.Order("id").Find(&before).Error)

	second, err := NewPipeline(fakeSource(rows...), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	var after []models.Compartimento
	require.NoError(t, db.Order("id").Find(&after).Error)

	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), count(t, db, &models.Campus{}))

	// Cross-run upserts count as processed just like first writes, so the counters match.
	assert.Equal(t, first.CompartimentosProcessed, second.CompartimentosProcessed)
	assert.Equal(t, first.CampusCached, second.CampusCached)
	assert.Equal(t, first.PredioCached, second.PredioCached)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPipeline_DuplicateRoomsInOneFetch(t *testing.T) {
	db := setupTestDB(t)

	a := newRow("Central", "Bloco A", "Reitoria", "Sala 1")
	a[FieldCapacidade] = "10"
	b := newRow("Central", "Bloco A", "Biblioteca", "  SALA   1 ")
	b[FieldCapacidade] = "99"

	summary, err := NewPipeline(fakeSource(a, b), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CompartimentosProcessed)
	assert.Equal(t, 1, summary.Duplicates)

	var rooms []models.Compartimento
	require.NoError(t, db.Find(&rooms).Error)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Sala 1", rooms[0].Nome)
	require.NotNil(t, rooms[0].Capacidade)
	assert.Equal(t, 10, *rooms[0].Capacidade)
}

func TestPipeline_SkipsRowsWithMissingNames(t *testing.T) {
	db := setupTestDB(t)

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "   "),
		newRow("", "Bloco A", "Reitoria", "Sala 1"),
		source.Row{FieldCampusNome: "Central"},
	), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RowsFetched)
	assert.Equal(t, 0, summary.CompartimentosProcessed)
	assert.Equal(t, 3, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, int64(0), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(0), count(t, db, &models.Compartimento{}))
}

func TestPipeline_InvalidNumberSkipsRecord(t *testing.T) {
	db := setupTestDB(t)

	bad := newRow("Leste", "Bloco Z", "Reitoria", "Sala 1")
	bad[FieldCapacidade] = "muitos"

	summary, err := NewPipeline(fakeSource(
		bad,
		newRow("Central", "Bloco A", "Reitoria", "Sala 2"),
	), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowsFetched)
	assert.Equal(t, 1, summary.CompartimentosProcessed)
	assert.Equal(t, 1, summary.Failed)

	var campus []models.Campus
	require.NoError(t, db.Find(&campus).Error)
	require.Len(t, campus, 1)
	assert.Equal(t, "Central", campus[0].Nome)
}

func TestPipeline_UpdatesExistingRoomInPlace(t *testing.T) {
	db := setupTestDB(t)

	row := newRow("Central", "Bloco A", "Reitoria", "Sala 1")
	row[FieldCapacidade] = "10"
	_, err := NewPipeline(fakeSource(row), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	var before models.Compartimento
	require.NoError(t, db.First(&before).Error)

	changed := newRow("Central", "Bloco A", "Reitoria", "Sala 1")
	changed[FieldCapacidade] = "20"
	_, err = NewPipeline(fakeSource(changed), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	var after models.Compartimento
	require.NoError(t, db.First(&after).Error)

	assert.Equal(t, int64(1), count(t, db, &models.Compartimento{}))
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.PredioID, after.PredioID)
	assert.Equal(t, before.Nome, after.Nome)
	require.NotNil(t, after.Capacidade)
	assert.Equal(t, 20, *after.Capacidade)
}

func TestPipeline_CampusNamesAreCaseSensitive(t *testing.T) {
	db := setupTestDB(t)

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
		newRow("central", "Bloco A", "Reitoria", "Sala 1"),
	), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CampusCached)
	assert.Equal(t, 2, summary.CompartimentosProcessed)
	assert.Equal(t, int64(2), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(2), count(t, db, &models.Predio{}))
}

func TestPipeline_PreloadedEntitiesAreReused(t *testing.T) {
	db := setupTestDB(t)

	campus := models.Campus{Nome: "Central"}
	require.NoError(t, db.Create(&campus).Error)
	require.NoError(t, db.Create(&models.Predio{CampusID: campus.ID, Nome: "Bloco A"}).Error)
	require.NoError(t, db.Create(&models.Unidade{Nome: "Biblioteca"}).Error)

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
	), db, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CampusCached)
	assert.Equal(t, 2, summary.UnidadeCached)
	assert.Equal(t, 1, summary.PredioCached)
	assert.Equal(t, int64(1), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(1), count(t, db, &models.Predio{}))
}

func TestPipeline_FetchErrorWritesNothing(t *testing.T) {
	db := setupTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows":"not-a-list"}`))
	}))
	defer srv.Close()

	client, err := source.NewClient(source.Config{URL: srv.URL, Timeout: 5}, zap.NewNop())
	require.NoError(t, err)

	summary, err := NewPipeline(client, db, zap.NewNop(), Options{}).Run(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, source.ErrInvalidPayload)
	assert.Equal(t, int64(0), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(0), count(t, db, &models.Compartimento{}))
}

// failingStore lets the run write normally until the nth room upsert.
type failingStore struct {
	Store
	failAt int
	calls  int
}

func (s *failingStore) UpsertCompartimento(ctx context.Context, room *models.Compartimento) error {
	s.calls++
	if s.calls == s.failAt {
		return errors.New("connection lost")
	}
	return s.Store.UpsertCompartimento(ctx, room)
}

func TestPipeline_StorageErrorRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)

	p := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
		newRow("Norte", "Bloco B", "Biblioteca", "Sala 2"),
	), db, zap.NewNop(), Options{})
	p.newStore = func(tx *gorm.DB) Store {
		return &failingStore{Store: NewStore(tx), failAt: 2}
	}

	summary, err := p.Run(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorContains(t, err, "connection lost")

	assert.Equal(t, int64(0), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(0), count(t, db, &models.Unidade{}))
	assert.Equal(t, int64(0), count(t, db, &models.Predio{}))
	assert.Equal(t, int64(0), count(t, db, &models.Compartimento{}))
}

func TestPipeline_PreloadErrorRollsBack(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig())
	require.NoError(t, err)

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery("SELECT \\* FROM `campus`").WillReturnError(errors.New("server has gone away"))
	sqlMock.ExpectRollback()

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
	), db, zap.NewNop(), Options{}).Run(context.Background())

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// racingStore hides one campus from the preload and the first lookup, as if another
// run created it after this run read the table.
type racingStore struct {
	Store
	hidden Key
	misses int
}

func (s *racingStore) LoadAll(ctx context.Context, kind Kind) (map[Key]uint, error) {
	index, err := s.Store.LoadAll(ctx, kind)
	if kind == KindCampus {
		delete(index, s.hidden)
	}
	return index, err
}

func (s *racingStore) Find(ctx context.Context, kind Kind, key Key) (uint, bool, error) {
	if kind == KindCampus && key == s.hidden && s.misses == 0 {
		s.misses++
		return 0, false, nil
	}
	return s.Store.Find(ctx, kind, key)
}

func TestPipeline_RecoversFromConcurrentCreate(t *testing.T) {
	db := setupTestDB(t)

	existing := models.Campus{Nome: "Central"}
	require.NoError(t, db.Create(&existing).Error)

	p := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
	), db, zap.NewNop(), Options{})
	p.newStore = func(tx *gorm.DB) Store {
		return &racingStore{Store: NewStore(tx), hidden: Key{Nome: "Central"}}
	}

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompartimentosProcessed)

	assert.Equal(t, int64(1), count(t, db, &models.Campus{}))
	var predio models.Predio
	require.NoError(t, db.First(&predio).Error)
	assert.Equal(t, existing.ID, predio.CampusID)
}

func TestPipeline_DryRunRollsBack(t *testing.T) {
	db := setupTestDB(t)

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
		newRow("Central", "Bloco A", "Reitoria", "Sala 2"),
	), db, zap.NewNop(), Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.CompartimentosProcessed)
	assert.Equal(t, 1, summary.CampusCached)
	assert.Equal(t, int64(0), count(t, db, &models.Campus{}))
	assert.Equal(t, int64(0), count(t, db, &models.Compartimento{}))
}

func TestPipeline_ArchivesPayload(t *testing.T) {
	db := setupTestDB(t)

	client := new(storagemocks.Client)
	client.On("BucketExists", mock.Anything, "harvest").Return(true, nil)
	client.On("PutObject", mock.Anything, "harvest", mock.AnythingOfType("string"), mock.Anything, int64(len(`{"rows":[]}`)), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	summary, err := NewPipeline(fakeSource(), db, zap.NewNop(), Options{
		Archiver: NewArchiver(client, "harvest", "cobalto"),
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cobalto/"+summary.RunID+".json", summary.ArchiveObject)
	client.AssertExpectations(t)
}

func TestPipeline_ArchiveFailureDoesNotAbort(t *testing.T) {
	db := setupTestDB(t)

	client := new(storagemocks.Client)
	client.On("BucketExists", mock.Anything, "harvest").Return(false, errors.New("no route to host"))

	summary, err := NewPipeline(fakeSource(
		newRow("Central", "Bloco A", "Reitoria", "Sala 1"),
	), db, zap.NewNop(), Options{
		Archiver: NewArchiver(client, "harvest", "cobalto"),
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, summary.ArchiveObject)
	assert.Equal(t, 1, summary.CompartimentosProcessed)
}
