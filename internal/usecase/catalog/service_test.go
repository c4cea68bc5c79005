package catalog

import (
	"context"
	"testing"

	domain "sheetsync/backend/internal/domain/catalog"
	"sheetsync/backend/internal/infrastructure/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store, store, zerolog.Nop()), store
}

func strp(s string) *string {
	return &s
}

func numID(id int64) *domain.FlexID {
	f := domain.NewFlexID(id)
	return &f
}

func strID(s string) *domain.FlexID {
	f := domain.StringFlexID(s)
	return &f
}

func seedEntry(t *testing.T, store *memory.Store, entry *domain.Entry) int64 {
	t.Helper()
	id, err := store.Save(context.Background(), entry)
	require.NoError(t, err)
	return id
}

func TestReconcileCreateForcesPublish(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{Name: strp("Widget"), RegularPrice: strp("9.99"), Status: strp("draft")},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Empty(t, res.Updated)
	require.Len(t, res.Processed, 1)

	created := res.Created[0]
	assert.Equal(t, "publish", *created.Status)
	assert.Equal(t, "simple", created.Type)
	assert.Equal(t, "Widget", *created.Name)
	assert.Equal(t, "9.99", *created.RegularPrice)

	id, ok := created.EntryID()
	require.True(t, ok)
	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublish, stored.Status)
}

func TestReconcileUpdatePartial(t *testing.T) {
	svc, store := newTestService(t)
	id := seedEntry(t, store, &domain.Entry{
		Type:         domain.TypeSimple,
		Name:         "Widget",
		SKU:          "W-1",
		RegularPrice: "9.99",
		Status:       "draft",
	})

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(id), SalePrice: strp("5")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Updated, 1)

	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "5", stored.SalePrice)
	assert.Equal(t, "Widget", stored.Name)
	assert.Equal(t, "W-1", stored.SKU)
	assert.Equal(t, "9.99", stored.RegularPrice)
	// Status is only forced on creation.
	assert.Equal(t, "draft", stored.Status)
}

func TestReconcileUnresolvableIDTakesCreatePath(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(999), Name: strp("Fresh"), RegularPrice: strp("1.00")},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	id, ok := res.Created[0].EntryID()
	require.True(t, ok)
	assert.NotEqual(t, int64(999), id)

	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublish, stored.Status)
}

func TestReconcileAllInvalidFailsBatch(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{RegularPrice: strp("9.99")},
		{Name: strp("   ")},
	})
	assert.ErrorIs(t, err, domain.ErrNoProductsProcessed)
	assert.Nil(t, res)
}

func TestReconcilePartialSuccessKeepsFailureMarkers(t *testing.T) {
	svc, _ := newTestService(t)

	failing := domain.ProductRecord{ID: strID("new"), SKU: strp("NO-NAME")}
	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		failing,
		{Name: strp("Widget")},
	})
	require.NoError(t, err)
	require.Len(t, res.Processed, 2)
	require.Len(t, res.Created, 1)
	assert.Empty(t, res.Updated)

	// The failure marker is the raw input record: no name was ever set and
	// the id token is echoed verbatim, while the success is a formatted
	// entry with every field present.
	assert.Equal(t, failing, res.Processed[0])
	assert.Nil(t, res.Processed[0].Name)
	assert.NotNil(t, res.Processed[1].Status)
	assert.Equal(t, "publish", *res.Processed[1].Status)
}

func TestReconcileCreateVariableRegistersAttributes(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{
			Name:       strp("Shirt"),
			Type:       "variable",
			Attributes: strp("Color:Red|Blue, Size:L|"),
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	id, ok := res.Created[0].EntryID()
	require.True(t, ok)
	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, stored.Attributes, 2)

	color := stored.Attributes[0]
	assert.Equal(t, "pa_color", color.Taxonomy)
	assert.Equal(t, []string{"red", "blue"}, color.Options)
	assert.True(t, color.Visible)
	assert.True(t, color.Variation)

	size := stored.Attributes[1]
	assert.Equal(t, "pa_size", size.Taxonomy)
	// The trailing pipe's empty segment is dropped before term creation.
	assert.Equal(t, []string{"l"}, size.Options)

	exists, err := store.TaxonomyExists(context.Background(), "pa_color")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"red", "blue"}, store.AssignedTerms(id, "pa_color"))
}

func TestReconcileCreateVariableCollectsNoVariations(t *testing.T) {
	svc, store := newTestService(t)

	// The related-variation lookup keys on the input record's id, so a
	// brand-new parent (no id yet) never picks up its variations.
	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{Name: strp("Shirt"), Type: "variable", Attributes: strp("Color:Red")},
		{Type: "variation", ParentID: numID(1), Attributes: strp("Color:Red"), RegularPrice: strp("5")},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	require.Len(t, res.Processed, 1)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.TypeVariable, listed[0].Type)
}

func TestReconcileUpdateVariableCreatesVariations(t *testing.T) {
	svc, store := newTestService(t)
	parentID := seedEntry(t, store, &domain.Entry{
		Type:   domain.TypeVariable,
		Name:   "Shirt",
		Status: domain.StatusPublish,
		Attributes: []domain.Attribute{
			{Name: "Color", Taxonomy: "pa_color", Options: []string{"red", "blue"}, Visible: true, Variation: true},
		},
	})
	require.NoError(t, store.EnsureTaxonomy(context.Background(), "pa_color", "Color"))
	_, err := store.EnsureTerm(context.Background(), "pa_color", "Red")
	require.NoError(t, err)
	_, err = store.EnsureTerm(context.Background(), "pa_color", "Blue")
	require.NoError(t, err)

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(parentID), Type: "variable"},
		{Type: "variation", ParentID: numID(parentID), Attributes: strp("Color:Red"), RegularPrice: strp("19.99"), SalePrice: strp("")},
	})
	require.NoError(t, err)
	// Variation outcomes are side effects: only the parent is tallied.
	require.Len(t, res.Updated, 1)
	require.Len(t, res.Processed, 1)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)

	var variationID int64
	for _, row := range listed {
		if row.Type == domain.TypeVariation {
			variationID = row.ID
		}
	}
	require.NotZero(t, variationID)

	variation, err := store.Get(context.Background(), variationID)
	require.NoError(t, err)
	assert.Equal(t, parentID, variation.ParentID)
	assert.Equal(t, domain.StatusPublish, variation.Status)
	assert.Equal(t, "19.99", variation.RegularPrice)
	assert.Empty(t, variation.SalePrice)
	require.Len(t, variation.Attributes, 1)
	assert.Equal(t, "pa_color", variation.Attributes[0].Taxonomy)
	assert.Equal(t, []string{"red"}, variation.Attributes[0].Options)
}

func TestReconcileUpdateVariationKeepsStatus(t *testing.T) {
	svc, store := newTestService(t)
	parentID := seedEntry(t, store, &domain.Entry{
		Type:   domain.TypeVariable,
		Name:   "Shirt",
		Status: domain.StatusPublish,
	})
	variationID := seedEntry(t, store, &domain.Entry{
		Type:         domain.TypeVariation,
		ParentID:     parentID,
		RegularPrice: "10",
		Status:       "private",
	})

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(parentID), Type: "variable"},
		{ID: numID(variationID), Type: "variation", ParentID: numID(parentID), RegularPrice: strp("12")},
	})
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)

	variation, err := store.Get(context.Background(), variationID)
	require.NoError(t, err)
	assert.Equal(t, "12", variation.RegularPrice)
	assert.Equal(t, "private", variation.Status)
}

func TestReconcileMissingVariationSkippedSilently(t *testing.T) {
	svc, store := newTestService(t)
	parentID := seedEntry(t, store, &domain.Entry{
		Type:   domain.TypeVariable,
		Name:   "Shirt",
		Status: domain.StatusPublish,
	})

	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(parentID), Type: "variable"},
		{ID: numID(4040), Type: "variation", ParentID: numID(parentID), RegularPrice: strp("12")},
	})
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestReconcileVariationFallbackAttribute(t *testing.T) {
	svc, store := newTestService(t)
	parentID := seedEntry(t, store, &domain.Entry{
		Type:   domain.TypeVariable,
		Name:   "Shirt",
		Status: domain.StatusPublish,
	})

	// No pa_material taxonomy exists, so the selection is kept as a raw
	// name/value pair.
	res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{
		{ID: numID(parentID), Type: "variable"},
		{Type: "variation", ParentID: numID(parentID), Attributes: strp("Material:Wool")},
	})
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)

	for _, row := range listed {
		if row.Type != domain.TypeVariation {
			continue
		}
		variation, err := store.Get(context.Background(), row.ID)
		require.NoError(t, err)
		require.Len(t, variation.Attributes, 1)
		assert.Empty(t, variation.Attributes[0].Taxonomy)
		assert.Equal(t, "Material", variation.Attributes[0].Name)
		assert.Equal(t, []string{"Wool"}, variation.Attributes[0].Options)
	}
}

func TestFetchCatalogOrder(t *testing.T) {
	svc, store := newTestService(t)
	p1 := seedEntry(t, store, &domain.Entry{Type: domain.TypeSimple, Name: "First", Status: domain.StatusPublish})
	v1 := seedEntry(t, store, &domain.Entry{Type: domain.TypeVariation, ParentID: p1, Status: domain.StatusPublish})
	p2 := seedEntry(t, store, &domain.Entry{Type: domain.TypeSimple, Name: "Second", Status: domain.StatusPublish})
	seedEntry(t, store, &domain.Entry{Type: domain.TypeSimple, Name: "Hidden", Status: "draft"})

	records, err := svc.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Built parent-first then variations, then reversed.
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		id, ok := rec.EntryID()
		require.True(t, ok)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{p2, v1, p1}, ids)
}

func TestCreateFormatRoundTrip(t *testing.T) {
	for _, typ := range []string{"simple", "variable", "grouped", "external"} {
		t.Run(typ, func(t *testing.T) {
			svc, _ := newTestService(t)

			input := domain.ProductRecord{
				Type:         typ,
				Name:         strp("Widget " + typ),
				SKU:          strp("SKU-" + typ),
				RegularPrice: strp("19.99"),
				SalePrice:    strp("14.99"),
				Stock:        strp("7"),
			}
			res, err := svc.Reconcile(context.Background(), []domain.ProductRecord{input})
			require.NoError(t, err)
			require.Len(t, res.Created, 1)

			got := res.Created[0]
			assert.Equal(t, typ, got.Type)
			assert.Equal(t, *input.Name, *got.Name)
			assert.Equal(t, *input.SKU, *got.SKU)
			assert.Equal(t, *input.RegularPrice, *got.RegularPrice)
			assert.Equal(t, *input.SalePrice, *got.SalePrice)
			assert.Equal(t, *input.Stock, *got.Stock)
			assert.Equal(t, "publish", *got.Status)
			assert.Equal(t, "", got.ParentID.String())
		})
	}
}
