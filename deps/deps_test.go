package deps

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zordinals/zordinals/reconstruct"
	"github.com/zordinals/zordinals/store"
)

const id1 = "1111111111111111111111111111111111111111111111111111111111111111i0"
const id2 = "2222222222222222222222222222222222222222222222222222222222222222i0"

// fakeEnsurer fakes reconstruct.Reconstructor.EnsureInscription for
// dependency-resolution tests; each call is recorded so tests can
// assert on what got resolved and how many times.
type fakeEnsurer struct {
	results map[string]*reconstruct.Result
	calls   map[string]int
}

func (f *fakeEnsurer) EnsureInscription(_ context.Context, idOrTxid string) (*reconstruct.Result, error) {
	f.calls[idOrTxid]++
	res, ok := f.results[idOrTxid]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", idOrTxid)
	}
	return res, nil
}

func TestResolve_NonHTMLIsNoop(t *testing.T) {
	f := &fakeEnsurer{results: map[string]*reconstruct.Result{}, calls: map[string]int{}}
	r := New(f, store.New(t.TempDir()))

	err := r.Resolve(context.Background(), &reconstruct.Result{MimeType: "image/png", InscriptionId: id1})
	require.NoError(t, err)
	assert.Empty(t, f.calls)
}

func TestResolve_ResolvesTwoSVGDeps(t *testing.T) {
	htmlBody := fmt.Sprintf(`<html><img src="/content/%s"><img src="/content/%s"></html>`, id1, id2)
	root := &reconstruct.Result{
		MimeType:      "text/html",
		InscriptionId: "rootrootrootrootrootrootrootrootrootrootrootrootrootrootrootroo0i0",
		Buffer:        []byte(htmlBody),
	}
	f := &fakeEnsurer{
		calls: map[string]int{},
		results: map[string]*reconstruct.Result{
			id1: {MimeType: "image/svg+xml", InscriptionId: id1, FromCache: true, Buffer: []byte("<svg/>")},
			id2: {MimeType: "image/svg+xml", InscriptionId: id2, FromCache: false, Buffer: []byte("<svg/>")},
		},
	}
	r := New(f, store.New(t.TempDir()))

	err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls[id1])
	assert.Equal(t, 1, f.calls[id2])
}

func TestResolve_CyclicDepsVisitedOnce(t *testing.T) {
	aId := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaai0"
	bId := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbi0"

	aHTML := fmt.Sprintf(`<html><a href="/content/%s">b</a></html>`, bId)
	bHTML := fmt.Sprintf(`<html><a href="/content/%s">a</a></html>`, aId)

	root := &reconstruct.Result{MimeType: "text/html", InscriptionId: aId, Buffer: []byte(aHTML)}
	f := &fakeEnsurer{
		calls: map[string]int{},
		results: map[string]*reconstruct.Result{
			bId: {MimeType: "text/html", InscriptionId: bId, Buffer: []byte(bHTML)},
		},
	}
	r := New(f, store.New(t.TempDir()))

	err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls[bId])
	assert.NotContains(t, f.calls, aId) // root itself is never re-resolved, only its dependency b
}

func TestResolve_FailedDependencyDoesNotAbort(t *testing.T) {
	missingId := "3333333333333333333333333333333333333333333333333333333333333333i0"
	presentId := id1
	htmlBody := fmt.Sprintf(`<html><img src="/content/%s"><img src="/content/%s"></html>`, missingId, presentId)
	root := &reconstruct.Result{MimeType: "text/html", InscriptionId: "rootid", Buffer: []byte(htmlBody)}
	f := &fakeEnsurer{
		calls: map[string]int{},
		results: map[string]*reconstruct.Result{
			presentId: {MimeType: "image/png", InscriptionId: presentId, Buffer: []byte("P")},
		},
	}
	r := New(f, store.New(t.TempDir()))

	err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls[missingId])
	assert.Equal(t, 1, f.calls[presentId])
}

func TestResolve_ReadsFromStoreWhenBufferNil(t *testing.T) {
	s := store.New(t.TempDir())
	require.NoError(t, s.WriteArtifact("cachedrootid.html", []byte(fmt.Sprintf(`<html><img src="/content/%s"></html>`, id1))))
	require.NoError(t, s.Upsert(store.ContentRecord{InscriptionId: "cachedrootid", Filename: "cachedrootid.html", MimeType: "text/html"}))

	root := &reconstruct.Result{MimeType: "text/html", InscriptionId: "cachedrootid", FromCache: true, Buffer: nil}
	f := &fakeEnsurer{
		calls: map[string]int{},
		results: map[string]*reconstruct.Result{
			id1: {MimeType: "image/png", InscriptionId: id1, Buffer: []byte("P")},
		},
	}
	r := New(f, s)

	err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls[id1])
}
