package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
	"github.com/nsorokin/web-scheduler/backend/internal/service"
)

// existingTag returns a tag repo that resolves every GetByID call, for tests
// where the owning tag's existence is not what is being exercised.
func existingTag(tagID uuid.UUID) *mockTagRepo {
	return &mockTagRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Tag, error) {
			return domain.Tag{ID: id, Name: "room"}, nil
		},
	}
}

func echoTagValueRepo() *mockTagValueRepo {
	return &mockTagValueRepo{
		create: func(_ context.Context, tv domain.TagValue) (domain.TagValue, error) {
			tv.ID = uuid.New()
			return tv, nil
		},
		update: func(_ context.Context, tv domain.TagValue) (domain.TagValue, error) { return tv, nil },
	}
}

func TestTagValueService_Create_Valid(t *testing.T) {
	tagID := uuid.New()
	sink := &captureSink{}
	svc := service.NewTagValueService(existingTag(tagID), echoTagValueRepo(), &mockTxManager{}, sink)

	color := "#ff0000"
	got, err := svc.Create(context.Background(), domain.TagValue{TagID: tagID, Value: "Room A", Color: &color}, "alice")

	require.NoError(t, err)
	assert.Equal(t, "Room A", got.Value)
	require.NotNil(t, got.Color)
	assert.Equal(t, "#ff0000", *got.Color)

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditCreate, entries[0].Action)
	assert.Equal(t, domain.EntityTagValue, entries[0].Entity)
}

func TestTagValueService_Create_UnknownTag(t *testing.T) {
	tags := &mockTagRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Tag, error) {
			return domain.Tag{}, domain.ErrNotFound
		},
	}
	sink := &captureSink{}
	svc := service.NewTagValueService(tags, echoTagValueRepo(), &mockTxManager{}, sink)

	_, err := svc.Create(context.Background(), domain.TagValue{TagID: uuid.New(), Value: "Room A"}, "alice")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, sink.all())
}

func TestTagValueService_Create_BlankValue(t *testing.T) {
	tagID := uuid.New()
	sink := &captureSink{}
	svc := service.NewTagValueService(existingTag(tagID), echoTagValueRepo(), &mockTxManager{}, sink)

	_, err := svc.Create(context.Background(), domain.TagValue{TagID: tagID, Value: "  "}, "alice")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagValueService_Create_DuplicateWithinTag(t *testing.T) {
	tagID := uuid.New()
	values := &mockTagValueRepo{
		create: func(_ context.Context, _ domain.TagValue) (domain.TagValue, error) {
			return domain.TagValue{}, domain.ErrDuplicateName
		},
	}
	sink := &captureSink{}
	svc := service.NewTagValueService(existingTag(tagID), values, &mockTxManager{}, sink)

	_, err := svc.Create(context.Background(), domain.TagValue{TagID: tagID, Value: "Room A"}, "alice")

	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestTagValueService_Update_ValueAndColor(t *testing.T) {
	stored := domain.TagValue{ID: uuid.New(), TagID: uuid.New(), Value: "Room A"}
	values := echoTagValueRepo()
	values.getByID = func(_ context.Context, _ uuid.UUID) (domain.TagValue, error) { return stored, nil }
	sink := &captureSink{}
	svc := service.NewTagValueService(&mockTagRepo{}, values, &mockTxManager{}, sink)

	newValue, newColor := "Room A1", "#00ff00"
	got, err := svc.Update(context.Background(), stored.ID, &newValue, &newColor, "bob")

	require.NoError(t, err)
	assert.Equal(t, "Room A1", got.Value)
	require.NotNil(t, got.Color)
	assert.Equal(t, "#00ff00", *got.Color)

	entries := sink.all()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Details)
	assert.Contains(t, *entries[0].Details, `value: "Room A" -> "Room A1"`)
	assert.Contains(t, *entries[0].Details, "color: - -> #00ff00")
}

func TestTagValueService_Update_NotFound(t *testing.T) {
	values := &mockTagValueRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.TagValue, error) {
			return domain.TagValue{}, domain.ErrNotFound
		},
	}
	svc := service.NewTagValueService(&mockTagRepo{}, values, &mockTxManager{}, &captureSink{})

	v := "x"
	_, err := svc.Update(context.Background(), uuid.New(), &v, nil, "bob")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagValueService_Update_BlankValueRejected(t *testing.T) {
	stored := domain.TagValue{ID: uuid.New(), TagID: uuid.New(), Value: "Room A"}
	values := echoTagValueRepo()
	values.getByID = func(_ context.Context, _ uuid.UUID) (domain.TagValue, error) { return stored, nil }
	svc := service.NewTagValueService(&mockTagRepo{}, values, &mockTxManager{}, &captureSink{})

	blank := ""
	_, err := svc.Update(context.Background(), stored.ID, &blank, nil, "bob")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagValueService_Delete_CascadesInTransaction(t *testing.T) {
	stored := domain.TagValue{ID: uuid.New(), TagID: uuid.New(), Value: "Room A"}
	var cascaded uuid.UUID
	tx := &mockTxManager{repos: repo.Repos{
		TagValues: &mockTagValueRepo{
			deleteCascade: func(_ context.Context, id uuid.UUID) error {
				cascaded = id
				return nil
			},
		},
	}}
	values := &mockTagValueRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.TagValue, error) { return stored, nil },
	}
	sink := &captureSink{}
	svc := service.NewTagValueService(&mockTagRepo{}, values, tx, sink)

	err := svc.Delete(context.Background(), stored.ID, "carol")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, cascaded)

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditDelete, entries[0].Action)
}

func TestTagValueService_ListByTag_UnknownTag(t *testing.T) {
	tags := &mockTagRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Tag, error) {
			return domain.Tag{}, domain.ErrNotFound
		},
	}
	svc := service.NewTagValueService(tags, &mockTagValueRepo{}, &mockTxManager{}, &captureSink{})

	_, err := svc.ListByTag(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagValueService_ListByTag_NilBecomesEmptySlice(t *testing.T) {
	tagID := uuid.New()
	values := &mockTagValueRepo{
		listByTag: func(_ context.Context, _ uuid.UUID) ([]domain.TagValue, error) { return nil, nil },
	}
	svc := service.NewTagValueService(existingTag(tagID), values, &mockTxManager{}, &captureSink{})

	got, err := svc.ListByTag(context.Background(), tagID)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
