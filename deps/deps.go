// Package deps implements C7: recursive discovery of inline
// "/content/<inscriptionId>" references inside HTML/SVG artifacts (spec
// §4.7). The frontier is driven through an explicit queue rather than
// recursive calls, per spec §9's "encode iteratively... to avoid
// unbounded stack growth" note applied to dependency discovery as well
// as to chain traversal; the queue implementation itself is the
// teacher's own lnd/queue dependency (go.mod), otherwise unused by the
// teacher's own source.
package deps

import (
	"context"
	"fmt"
	"regexp"

	"github.com/decred/dcrd/lru"
	"github.com/lightningnetwork/lnd/queue"
	"github.com/zordinals/zordinals/constants"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/reconstruct"
	"github.com/zordinals/zordinals/store"
)

// depPattern matches spec §4.7's "/content/<64-hex-chars>i<digits>"
// reference, case-insensitively.
var depPattern = regexp.MustCompile(`(?i)/content/([a-f0-9]{64}i\d+)`)

// visitedCacheSize bounds the cycle-prevention set (spec §4.7: "a
// visited set keyed by baseTxid prevents cycles"). Recursion in
// practice is shallow; this comfortably covers pathological fan-out
// without growing unbounded.
const visitedCacheSize = 4096

// Ensurer is the one call the resolver needs back from the
// reconstructor, isolated behind an interface so deps doesn't need the
// reconstructor's full dependency surface (and so tests can fake it).
type Ensurer interface {
	EnsureInscription(ctx context.Context, idOrTxid string) (*reconstruct.Result, error)
}

// Resolver walks the dependency graph of an HTML/SVG artifact,
// ensuring every referenced inscription is present in the content
// store (spec §4.7).
type Resolver struct {
	ensurer Ensurer
	store   *store.Store
}

// New builds a Resolver. contentStore is used to read an artifact back
// off disk when the result being scanned came from cache rather than a
// fresh decode (its buffer is nil in that case).
func New(ensurer Ensurer, contentStore *store.Store) *Resolver {
	return &Resolver{ensurer: ensurer, store: contentStore}
}

// Resolve scans res (if it is HTML/SVG) and every transitively
// referenced HTML/SVG dependency, ensuring each is decoded into the
// content store. A single failed dependency is logged and skipped
// rather than aborting the rest of the traversal (spec §4.7, §7).
func (r *Resolver) Resolve(ctx context.Context, res *reconstruct.Result) error {
	if !constants.IsHTMLOrSVG(res.MimeType) {
		return nil
	}

	visited := lru.NewCache(uint(visitedCacheSize))
	visited.Add(baseTxidOf(res.InscriptionId))

	q := queue.NewConcurrentQueue(64)
	q.Start()
	defer q.Stop()

	pending := r.enqueueDeps(q, res, &visited)
	for pending > 0 {
		v := <-q.ChanOut()
		pending--

		depId := v.(string)
		child, err := r.ensurer.EnsureInscription(ctx, depId)
		if err != nil {
			log.Deps.Warnf("resolving dependency %s: %v", depId, err)
			continue
		}
		pending += r.enqueueDeps(q, child, &visited)
	}
	return nil
}

// enqueueDeps extracts the references inside res's artifact text (if
// it's HTML/SVG) and pushes the unvisited ones onto q, marking them
// visited immediately so a reference appearing twice in the same
// artifact is only queued once. Returns how many entries it pushed.
func (r *Resolver) enqueueDeps(q *queue.ConcurrentQueue, res *reconstruct.Result, visited *lru.Cache) int {
	if !constants.IsHTMLOrSVG(res.MimeType) {
		return 0
	}
	text, err := r.artifactText(res)
	if err != nil {
		log.Deps.Warnf("reading artifact %s to scan for dependencies: %v", res.InscriptionId, err)
		return 0
	}

	pushed := 0
	for _, depId := range extractDependencyIds(text) {
		base := baseTxidOf(depId)
		if visited.Contains(base) {
			continue
		}
		visited.Add(base)
		q.ChanIn() <- depId
		pushed++
	}
	return pushed
}

// artifactText returns res's artifact as UTF-8 text, reading it from
// disk when res.Buffer is nil (i.e. res came from the content-store
// fast path rather than a fresh decode).
func (r *Resolver) artifactText(res *reconstruct.Result) (string, error) {
	if res.Buffer != nil {
		return string(res.Buffer), nil
	}
	rec, ok := r.store.Lookup(res.InscriptionId)
	if !ok {
		return "", fmt.Errorf("zordinals: no master index entry for %s", res.InscriptionId)
	}
	data, err := r.store.ReadArtifact(rec.Filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractDependencyIds returns the deduplicated, lower-cased set of
// dependency ids referenced in text, in first-seen order.
func extractDependencyIds(text string) []string {
	matches := depPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		id := lowerAscii(m[1])
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// baseTxidOf strips the trailing "i<n>" suffix from a canonical
// inscription id, for use as the visited-set key (spec §4.7).
func baseTxidOf(inscriptionId string) string {
	for i := len(inscriptionId) - 1; i >= 0; i-- {
		if inscriptionId[i] == 'i' {
			return inscriptionId[:i]
		}
	}
	return inscriptionId
}

func lowerAscii(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
