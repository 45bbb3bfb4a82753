package formstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byFormID(formID string) repositories.Selection {
	return repositories.Selection{Where: "jr_form_id = ?", Args: []any{formID}}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	h := newHarness(t)
	_, err = New(Options{Repository: h.forms, Paths: h.paths})
	assert.ErrorContains(t, err, "deleter")
}

func TestInsert_NormalizesPathsAndDerivesDefaults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	abs := h.writeDefinition(t, "birds", "<h:html>birds</h:html>")

	form, err := h.store.Insert(ctx, CollectionPath, Values{
		FormID:       Set("birds"),
		FormFilePath: Set(abs),
	})
	require.NoError(t, err)

	sum := md5.Sum([]byte("<h:html>birds</h:html>"))
	hash := hex.EncodeToString(sum[:])
	assert.NotZero(t, form.ID)
	assert.Equal(t, "forms/birds.xml", form.FormFilePath)
	assert.Equal(t, "forms/birds-media", form.FormMediaPath)
	assert.Equal(t, hash, form.MD5Hash)
	assert.Equal(t, ".cache/"+hash+".formdef", form.JrCacheFilePath)
	assert.Equal(t, "birds", form.DisplayName)
	assert.Equal(t, testNow.UnixMilli(), form.Date)
}

func TestInsert_KeepsCallerValues(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	abs := h.writeDefinition(t, "birds", "<h:html/>")
	autoSend := true

	form, err := h.store.Insert(ctx, "content://formstore/forms", Values{
		DisplayName:   Set("Bird survey"),
		FormID:        Set("birds"),
		Version:       Set(strPtr("2024")),
		MD5Hash:       Set("cafe"),
		Date:          Set(int64(1234)),
		FormFilePath:  Set(abs),
		AutoSend:      Set(&autoSend),
		SubmissionURI: Set(strPtr("https://example.org/submission")),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bird survey", form.DisplayName)
	assert.Equal(t, "cafe", form.MD5Hash)
	assert.Equal(t, ".cache/cafe.formdef", form.JrCacheFilePath)
	assert.Equal(t, int64(1234), form.Date)
	require.NotNil(t, form.AutoSend)
	assert.True(t, *form.AutoSend)
	assert.Nil(t, form.AutoDelete)
}

func TestInsert_RejectsNonCollectionAddresses(t *testing.T) {
	h := newHarness(t)
	for _, uri := range []string{"/forms/1", LatestPath} {
		_, err := h.store.Insert(context.Background(), uri, Values{FormID: Set("x")})
		assert.ErrorIs(t, err, ErrUnsupportedOperation, uri)
	}
	_, err := h.store.Insert(context.Background(), "/instances", Values{})
	assert.ErrorIs(t, err, ErrUnrecognizedAddress)
}

func TestInsert_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	abs := h.writeDefinition(t, "birds", "<h:html/>")

	_, err := h.store.Insert(ctx, CollectionPath, Values{FormFilePath: Set(abs)})
	assert.ErrorIs(t, err, ErrInvalidForm)

	_, err = h.store.Insert(ctx, CollectionPath, Values{FormID: Set("birds")})
	assert.ErrorIs(t, err, ErrInvalidForm)

	_, err = h.store.Insert(ctx, CollectionPath, Values{
		FormID:        Set("birds"),
		FormFilePath:  Set(abs),
		SubmissionURI: Set(strPtr("not a url")),
	})
	assert.ErrorIs(t, err, ErrInvalidForm)

	_, err = h.store.Insert(ctx, CollectionPath, Values{
		FormID:       Set("ghost"),
		FormFilePath: Set("forms/ghost.xml"),
	})
	assert.ErrorIs(t, err, ErrInvalidForm)
}

func TestQuery_ByIDReturnsInsertedRow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.insert(t, "a", "f1", "1", 1000)
	h.insert(t, "b", "f2", "1", 1000)

	res, err := h.store.Query(ctx, fmt.Sprintf("/forms/%d", id), Query{
		Selection: byFormID("f2"),
		Sort:      "nonsense that would fail",
	})
	require.NoError(t, err)
	require.Len(t, res.Forms, 1)
	assert.Equal(t, id, res.Forms[0].ID)
	assert.Equal(t, FormRoute(id), res.Route)
}

func TestQuery_ByIDMissing(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Query(context.Background(), "/forms/77", Query{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuery_Errors(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Query(context.Background(), "/forms/x", Query{})
	assert.ErrorIs(t, err, ErrUnrecognizedAddress)

	_, err = h.store.Query(context.Background(), CollectionPath, Query{Fields: []string{"password"}})
	assert.ErrorIs(t, err, ErrInvalidProjection)
}

func TestQuery_LatestPerFormIDScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.insert(t, "a", "f1", "1", 1000)
	b := h.insert(t, "b", "f1", "2", 2000)

	latest, err := h.store.Query(ctx, LatestPath, Query{})
	require.NoError(t, err)
	require.Len(t, latest.Forms, 1)
	assert.Equal(t, b, latest.Forms[0].ID)
	assert.Equal(t, int64(2000), latest.Forms[0].Date)

	all, err := h.store.Query(ctx, CollectionPath, Query{Sort: "id"})
	require.NoError(t, err)
	require.Len(t, all.Forms, 2)
	assert.Equal(t, a, all.Forms[0].ID)
	assert.Equal(t, b, all.Forms[1].ID)
}

func TestQuery_LatestPerFormIDOneRowPerGroupWithMaxDate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	dates := map[string][]int64{
		"f1": {300, 100, 200},
		"f2": {50},
		"f3": {10, 900},
	}
	want := map[string]int64{}
	i := 0
	for formID, ds := range dates {
		for _, d := range ds {
			i++
			h.insert(t, fmt.Sprintf("form%d", i), formID, fmt.Sprint(i), d)
			if d > want[formID] {
				want[formID] = d
			}
		}
	}

	res, err := h.store.Query(ctx, LatestPath, Query{Fields: []string{models.ColumnDisplayName}})
	require.NoError(t, err)
	require.Len(t, res.Forms, len(dates))
	for _, f := range res.Forms {
		assert.Equal(t, want[f.FormID], f.Date, f.FormID)
		assert.NotEmpty(t, f.DisplayName)
	}
}

func TestQuery_LatestDeletedPolicy(t *testing.T) {
	ctx := context.Background()

	for _, includeDeleted := range []bool{false, true} {
		t.Run(fmt.Sprint("includeDeleted=", includeDeleted), func(t *testing.T) {
			h := newHarness(t, func(o *Options) { o.LatestIncludesDeleted = includeDeleted })
			older := h.insert(t, "a", "f1", "1", 1000)
			newer := h.insert(t, "b", "f1", "2", 2000)
			_, err := h.store.Update(ctx, fmt.Sprintf("/forms/%d", newer), Values{DeletedDate: Set(new(int64))}, repositories.Selection{})
			require.NoError(t, err)

			res, err := h.store.Query(ctx, LatestPath, Query{})
			require.NoError(t, err)
			require.Len(t, res.Forms, 1)
			if includeDeleted {
				assert.Equal(t, newer, res.Forms[0].ID)
			} else {
				assert.Equal(t, older, res.Forms[0].ID)
			}
		})
	}
}

func TestUpdate_MergesOnlyNamedFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.insert(t, "a", "f1", "1", 1000)
	before, err := h.forms.Get(ctx, id)
	require.NoError(t, err)

	n, err := h.store.Update(ctx, fmt.Sprintf("/forms/%d", id), Values{DisplayName: Set("X")}, repositories.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	expected := before.Clone()
	expected.DisplayName = "X"
	assert.Equal(t, expected, *after)
}

func TestUpdate_ExplicitClearAndAbsolutePaths(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.insert(t, "a", "f1", "1", 1000)
	uri := fmt.Sprintf("/forms/%d", id)

	lang := "French"
	_, err := h.store.Update(ctx, uri, Values{
		Language:      Set(&lang),
		FormMediaPath: Set(h.paths.Absolute("forms/moved-media")),
	}, repositories.Selection{})
	require.NoError(t, err)

	got, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Language)
	assert.Equal(t, "French", *got.Language)
	assert.Equal(t, "forms/moved-media", got.FormMediaPath)
	assert.Equal(t, "forms/a.xml", got.FormFilePath)

	_, err = h.store.Update(ctx, uri, Values{Language: Set[*string](nil), Version: Set[*string](nil)}, repositories.Selection{})
	require.NoError(t, err)

	got, err = h.forms.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Language)
	assert.Nil(t, got.Version)
	assert.Equal(t, id, got.ID)
}

func TestUpdate_ByIDMissing(t *testing.T) {
	h := newHarness(t)
	n, err := h.store.Update(context.Background(), "/forms/5", Values{DisplayName: Set("X")}, repositories.Selection{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, n)
}

func TestUpdate_CollectionSelectionCountsRows(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.insert(t, "a", "f1", "1", 1000)
	h.insert(t, "b", "f1", "2", 2000)
	other := h.insert(t, "c", "f2", "1", 3000)

	n, err := h.store.Update(ctx, CollectionPath, Values{Description: Set(strPtr("merged"))}, byFormID("f1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := h.store.Query(ctx, CollectionPath, Query{Selection: repositories.Selection{Where: "description = ?", Args: []any{"merged"}}})
	require.NoError(t, err)
	assert.Len(t, res.Forms, 2)

	untouched, err := h.forms.Get(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, untouched.Description)
}

func TestUpdate_LatestUnsupported(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Update(context.Background(), LatestPath, Values{}, repositories.Selection{})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestUpdate_InvalidMergeRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.insert(t, "a", "f1", "1", 1000)

	_, err := h.store.Update(ctx, fmt.Sprintf("/forms/%d", id), Values{FormID: Set("")}, repositories.Selection{})
	assert.ErrorIs(t, err, ErrInvalidForm)

	got, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "f1", got.FormID)
}

func TestInsert_ExplicitZeroDateKept(t *testing.T) {
	h := newHarness(t)
	abs := h.writeDefinition(t, "epoch", "<h:html/>")

	form, err := h.store.Insert(context.Background(), CollectionPath, Values{
		FormID:       Set("epoch"),
		FormFilePath: Set(abs),
		Date:         Set(int64(0)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), form.Date)
}

// outsideRoot creates a directory next to the storage root and returns its
// absolute path and its path relative to the root.
func outsideRoot(t *testing.T, h *harness) (string, string) {
	t.Helper()
	root := h.paths.Root()
	dir := filepath.Join(filepath.Dir(root), "outside-"+filepath.Base(root))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("keep"), 0o644))
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir, "../" + filepath.Base(dir)
}

func TestInsert_RejectsPathsOutsideRoot(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	abs, rel := outsideRoot(t, h)

	for name, values := range map[string]Values{
		"relative definition": {FormID: Set("x"), FormFilePath: Set(rel + "/keep.txt"), MD5Hash: Set("abc")},
		"absolute definition": {FormID: Set("x"), FormFilePath: Set(filepath.Join(abs, "keep.txt"))},
		"media":               {FormID: Set("x"), FormFilePath: Set(h.writeDefinition(t, "m", "<h:html/>")), FormMediaPath: Set(rel)},
		"cache":               {FormID: Set("x"), FormFilePath: Set(h.writeDefinition(t, "c", "<h:html/>")), JrCacheFilePath: Set("/")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.store.Insert(ctx, CollectionPath, values)
			assert.ErrorIs(t, err, ErrInvalidForm)
		})
	}

	res, err := h.store.Query(ctx, CollectionPath, Query{})
	require.NoError(t, err)
	assert.Empty(t, res.Forms)
}

func TestUpdate_RejectsPathsOutsideRootAndDeleteKeepsThem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	abs, rel := outsideRoot(t, h)
	id := h.insert(t, "a", "f1", "1", 1000)
	uri := fmt.Sprintf("/forms/%d", id)

	for _, bad := range []string{rel, abs, "/", "forms/../.."} {
		_, err := h.store.Update(ctx, uri, Values{FormMediaPath: Set(bad)}, repositories.Selection{})
		assert.ErrorIs(t, err, ErrInvalidForm, bad)
	}
	got, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "forms/a-media", got.FormMediaPath)

	_, err = h.store.Delete(ctx, uri, repositories.Selection{})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(abs, "keep.txt"))
	assert.NoError(t, err)

	// A row written around the store still cannot reach outside the root.
	id = h.insert(t, "b", "f2", "1", 1000)
	row, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	row.FormMediaPath = rel
	_, err = h.forms.Save(ctx, row)
	require.NoError(t, err)

	_, err = h.store.Delete(ctx, fmt.Sprintf("/forms/%d", id), repositories.Selection{})
	assert.ErrorIs(t, err, storage.ErrOutsideRoot)
	_, err = os.Stat(filepath.Join(abs, "keep.txt"))
	assert.NoError(t, err)
}

func TestDelete_ByIDRemovesRowAndArtifacts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.insert(t, "a", "f1", "1", 1000)
	form, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, h.exists(form.FormFilePath))
	require.True(t, h.exists(form.FormMediaPath))

	n, err := h.store.Delete(ctx, fmt.Sprintf("/forms/%d", id), repositories.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = h.store.Query(ctx, fmt.Sprintf("/forms/%d", id), Query{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, h.exists(form.FormFilePath))
	assert.False(t, h.exists(form.FormMediaPath))
}

func TestDelete_ByIDMissingCount(t *testing.T) {
	ctx := context.Background()

	lenient := newHarness(t)
	n, err := lenient.store.Delete(ctx, "/forms/404", repositories.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	strict := newHarness(t, func(o *Options) { o.StrictDeleteCount = true })
	n, err = strict.store.Delete(ctx, "/forms/404", repositories.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDelete_BatchReturnsScannedCount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.insert(t, "a", "f1", "1", 1000)
	kept := h.insert(t, "b", "f1", "2", 2000)
	h.insert(t, "c", "f2", "1", 3000)

	n, err := h.store.Delete(ctx, CollectionPath, repositories.Selection{Where: "jr_form_id = ? OR id = ?", Args: []any{"f2", 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := h.store.Query(ctx, CollectionPath, Query{})
	require.NoError(t, err)
	require.Len(t, res.Forms, 1)
	assert.Equal(t, kept, res.Forms[0].ID)
}

func TestDelete_LatestUnsupported(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Delete(context.Background(), LatestPath, repositories.Selection{})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

type recordingDeleter struct {
	mu     sync.Mutex
	calls  []int64
	failOn int64
}

func (d *recordingDeleter) Delete(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, id)
	if id == d.failOn {
		return errors.New("media directory busy")
	}
	return nil
}

func TestDelete_BatchAbortsOnCascadeFailure(t *testing.T) {
	ctx := context.Background()
	del := &recordingDeleter{}
	h := newHarness(t, func(o *Options) { o.Deleter = del })
	first := h.insert(t, "a", "f1", "1", 1000)
	second := h.insert(t, "b", "f1", "2", 2000)
	h.insert(t, "c", "f1", "3", 3000)
	del.failOn = second

	base, err := h.store.Subscribe(CollectionPath, 4)
	require.NoError(t, err)

	n, err := h.store.Delete(ctx, CollectionPath, repositories.Selection{Where: "jr_form_id = ?", Args: []any{"f1"}})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{first, second}, del.calls)
	assert.Equal(t, 1, drain(base))
}

func TestNotifications_OnePerMutatingCall(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	base, err := h.store.Subscribe(CollectionPath, 8)
	require.NoError(t, err)
	latest, err := h.store.Subscribe(LatestPath, 8)
	require.NoError(t, err)

	a := h.insert(t, "a", "f1", "1", 1000)
	assert.Equal(t, 1, drain(base))
	assert.Equal(t, 1, drain(latest))

	h.insert(t, "b", "f1", "2", 2000)
	assert.Equal(t, 1, drain(base))
	assert.Equal(t, 1, drain(latest))

	single, err := h.store.Subscribe(fmt.Sprintf("/forms/%d", a), 8)
	require.NoError(t, err)

	n, err := h.store.Update(ctx, CollectionPath, Values{Language: Set(strPtr("en"))}, byFormID("f1"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, 1, drain(base))
	assert.Equal(t, 1, drain(latest))
	assert.Equal(t, 1, drain(single))

	n, err = h.store.Delete(ctx, CollectionPath, byFormID("f1"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, 1, drain(base))
	assert.Equal(t, 1, drain(latest))
	assert.Equal(t, 1, drain(single))

	_, err = h.store.Delete(ctx, "/forms/999", repositories.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 1, drain(base))
	assert.Equal(t, 1, drain(latest))
}

func TestNotifications_NotSentOnRejectedMutation(t *testing.T) {
	h := newHarness(t)
	base, err := h.store.Subscribe(CollectionPath, 8)
	require.NoError(t, err)

	_, err = h.store.Insert(context.Background(), "/forms/1", Values{})
	require.Error(t, err)
	_, err = h.store.Update(context.Background(), "/forms/1", Values{}, repositories.Selection{})
	require.Error(t, err)

	assert.Equal(t, 0, drain(base))
}

func TestResult_WatchStaysBoundToQueryAddress(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.insert(t, "a", "f1", "1", 1000)

	res, err := h.store.Query(ctx, LatestPath, Query{})
	require.NoError(t, err)
	sub := res.Watch(2)
	defer sub.Unsubscribe()
	assert.Equal(t, LatestRoute(), sub.Route)

	h.insert(t, "b", "f1", "2", 2000)

	select {
	case change := <-sub.C:
		assert.Equal(t, LatestRoute(), change.Route)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestSubscribe_Unrecognized(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Subscribe("/nope", 1)
	assert.ErrorIs(t, err, ErrUnrecognizedAddress)
}

type trackingRepository struct {
	Repository
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *trackingRepository) Save(ctx context.Context, form *models.Form) (*models.Form, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	return r.Repository.Save(ctx, form)
}

func TestMutations_AreSerialized(t *testing.T) {
	ctx := context.Background()
	var tracker *trackingRepository
	h := newHarness(t, func(o *Options) {
		tracker = &trackingRepository{Repository: o.Repository}
		o.Repository = tracker
	})
	id := h.insert(t, "a", "f1", "1", 1000)
	uri := fmt.Sprintf("/forms/%d", id)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("name-%d", i)
			_, err := h.store.Update(ctx, uri, Values{DisplayName: Set(name)}, repositories.Selection{})
			assert.NoError(t, err)
			_, err = h.store.Query(ctx, CollectionPath, Query{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), tracker.peak.Load())
	got, err := h.forms.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, got.DisplayName, "name-")
}
