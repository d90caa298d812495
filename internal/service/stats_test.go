package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nervio/neuromap/internal/model"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/store"
	"github.com/nervio/neuromap/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_DashboardTotals(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	synapses := NewSynapseService(st)
	stats := NewStatsService(st, nil)

	tenantID := uuid.New().String()
	otherTenant := uuid.New().String()
	grant := scope.CompanyOnly(uuid.New().String())
	pred := scope.Access(tenantID, grant)

	var people []*model.Neuron
	for i := 0; i < 3; i++ {
		n, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{Kind: model.KindPerson, Name: "P"})
		require.NoError(t, err)
		people = append(people, n)
	}
	biz, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{Kind: model.KindBusiness, Name: "B"})
	require.NoError(t, err)

	// noise in another tenant must not leak into the rollup
	_, err = neurons.Create(context.TODO(), otherTenant, grant, CreateNeuronRequest{Kind: model.KindPerson, Name: "X"})
	require.NoError(t, err)

	v1, v2 := 100.0, 250.0
	_, err = synapses.Create(context.TODO(), tenantID, grant, CreateSynapseRequest{
		FromNeuronID: people[0].ID, ToNeuronID: biz.ID, Kind: "works-for", StartDate: time.Now(), Value: &v1,
	})
	require.NoError(t, err)
	_, err = synapses.Create(context.TODO(), tenantID, grant, CreateSynapseRequest{
		FromNeuronID: people[1].ID, ToNeuronID: biz.ID, Kind: "works-for", StartDate: time.Now(), Value: &v2,
	})
	require.NoError(t, err)

	dashboard, err := stats.DashboardStats(context.TODO(), pred)
	require.NoError(t, err)

	// the total always equals the sum of the per-kind counts
	var sum int64
	for _, c := range dashboard.NeuronCountsByKind {
		sum += c
	}
	assert.Equal(t, dashboard.TotalNeurons, sum)
	assert.Equal(t, int64(4), dashboard.TotalNeurons)
	assert.Equal(t, int64(3), dashboard.NeuronCountsByKind[model.KindPerson])
	assert.Equal(t, int64(1), dashboard.NeuronCountsByKind[model.KindBusiness])

	assert.Equal(t, int64(2), dashboard.TotalSynapses)
	assert.Equal(t, 350.0, dashboard.TotalSynapseValue)
}

func TestStatsService_TotalValueIgnoresVisibility(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	synapses := NewSynapseService(st)
	stats := NewStatsService(st, nil)

	tenantID := uuid.New().String()
	alice := uuid.New().String()

	a, err := neurons.Create(context.TODO(), tenantID, scope.CompanyOnly(alice), CreateNeuronRequest{Kind: model.KindPerson, Name: "A"})
	require.NoError(t, err)
	b, err := neurons.Create(context.TODO(), tenantID, scope.CompanyOnly(alice), CreateNeuronRequest{Kind: model.KindPerson, Name: "B"})
	require.NoError(t, err)

	companyValue, personalValue := 1000.0, 500.0
	_, err = synapses.Create(context.TODO(), tenantID, scope.CompanyOnly(alice), CreateSynapseRequest{
		FromNeuronID: a.ID, ToNeuronID: b.ID, Kind: "supplies", StartDate: time.Now(), Value: &companyValue,
	})
	require.NoError(t, err)
	_, err = synapses.Create(context.TODO(), tenantID, personalGrant(alice), CreateSynapseRequest{
		FromNeuronID: a.ID, ToNeuronID: b.ID, Kind: "supplies", StartDate: time.Now(),
		Value: &personalValue, Level: model.VisibilityPersonal,
	})
	require.NoError(t, err)

	// company-only caller: the personal synapse is excluded from counts
	// but the financial rollup stays tenant-wide
	dashboard, err := stats.DashboardStats(context.TODO(), scope.Access(tenantID, scope.CompanyOnly(alice)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), dashboard.TotalSynapses)
	assert.Equal(t, 1500.0, dashboard.TotalSynapseValue)
}

func TestStatsService_ActiveSites(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	synapses := NewSynapseService(st)
	stats := NewStatsService(st, nil)

	tenantID := uuid.New().String()
	grant := scope.CompanyOnly(uuid.New().String())
	pred := scope.Access(tenantID, grant)

	active, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindPlace, Name: "Active site", Categories: []string{"construction-site"},
	})
	require.NoError(t, err)
	finished, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindPlace, Name: "Finished site", Categories: []string{"construction-site"},
	})
	require.NoError(t, err)
	// a place without the tag never counts
	_, err = neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindPlace, Name: "Warehouse",
	})
	require.NoError(t, err)

	builder, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindBusiness, Name: "Builder",
	})
	require.NoError(t, err)

	ended := time.Now()
	_, err = synapses.Create(context.TODO(), tenantID, grant, CreateSynapseRequest{
		FromNeuronID: builder.ID, ToNeuronID: finished.ID, Kind: "builds",
		StartDate: time.Now().AddDate(-1, 0, 0), EndDate: &ended,
	})
	require.NoError(t, err)
	_, err = synapses.Create(context.TODO(), tenantID, grant, CreateSynapseRequest{
		FromNeuronID: builder.ID, ToNeuronID: active.ID, Kind: "builds",
		StartDate: time.Now().AddDate(0, -1, 0),
	})
	require.NoError(t, err)

	dashboard, err := stats.DashboardStats(context.TODO(), pred)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.ActiveSiteCount)
}

func TestStatsService_SalesProgress(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	sales := NewSalesService(st)
	stats := NewStatsService(st, nil)

	tenantID := uuid.New().String()
	grant := scope.CompanyOnly(uuid.New().String())
	pred := scope.Access(tenantID, grant)

	family, err := sales.CreateProductFamily(context.TODO(), "Cement", 0)
	require.NoError(t, err)
	other, err := sales.CreateProductFamily(context.TODO(), "Steel", 1)
	require.NoError(t, err)

	// zero potential yields zero percent, not a division fault
	empty, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindBusiness, Name: "No potential",
	})
	require.NoError(t, err)

	progress, err := stats.SalesProgress(context.TODO(), pred, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress.Percent)
	assert.Equal(t, 0.0, progress.TotalSold)

	customer, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindBusiness, Name: "Customer", Potential: 1000,
	})
	require.NoError(t, err)

	_, err = sales.UpsertSalesRecord(context.TODO(), pred, customer.ID, family.ID, 100)
	require.NoError(t, err)
	_, err = sales.UpsertSalesRecord(context.TODO(), pred, customer.ID, other.ID, 150)
	require.NoError(t, err)

	progress, err = stats.SalesProgress(context.TODO(), pred, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, progress.Potential)
	assert.Equal(t, 250.0, progress.TotalSold)
	assert.Equal(t, 25.0, progress.Percent)
}

func TestSalesService_UpsertInPlace(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	sales := NewSalesService(st)

	tenantID := uuid.New().String()
	grant := scope.CompanyOnly(uuid.New().String())
	pred := scope.Access(tenantID, grant)

	family, err := sales.CreateProductFamily(context.TODO(), "Cement", 0)
	require.NoError(t, err)

	customer, err := neurons.Create(context.TODO(), tenantID, grant, CreateNeuronRequest{
		Kind: model.KindBusiness, Name: "Customer",
	})
	require.NoError(t, err)

	_, err = sales.UpsertSalesRecord(context.TODO(), pred, customer.ID, family.ID, 100)
	require.NoError(t, err)
	_, err = sales.UpsertSalesRecord(context.TODO(), pred, customer.ID, family.ID, 400)
	require.NoError(t, err)

	records, err := sales.ListSalesRecords(context.TODO(), pred, customer.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 400.0, records[0].Amount)
}

func TestStatsService_PersonalNoteCount(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	neurons := NewNeuronService(st)
	notes := NewNoteService(st)
	stats := NewStatsService(st, nil)

	tenantID := uuid.New().String()
	alice := uuid.New().String()
	bob := uuid.New().String()

	n, err := neurons.Create(context.TODO(), tenantID, scope.CompanyOnly(alice), CreateNeuronRequest{
		Kind: model.KindPerson, Name: "Subject",
	})
	require.NoError(t, err)

	_, err = notes.CreateNote(context.TODO(), tenantID, personalGrant(alice), n.ID, model.VisibilityPersonal, "alice only")
	require.NoError(t, err)
	_, err = notes.CreateNote(context.TODO(), tenantID, personalGrant(bob), n.ID, model.VisibilityPersonal, "bob only")
	require.NoError(t, err)
	_, err = notes.CreateNote(context.TODO(), tenantID, scope.CompanyOnly(alice), n.ID, model.VisibilityCompany, "shared")
	require.NoError(t, err)

	dashboard, err := stats.DashboardStats(context.TODO(), scope.Access(tenantID, personalGrant(alice)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.PersonalNoteCount)

	// notes are the one user-scoped row type: bob never lists alice's
	listed, err := notes.ListNotes(context.TODO(), scope.Access(tenantID, personalGrant(bob)), n.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, note := range listed {
		if note.Visibility == model.VisibilityPersonal {
			assert.Equal(t, bob, note.UserID)
		}
	}
}
