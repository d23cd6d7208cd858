// Package reconstruct implements C5: the orchestration of C2-C4 into a
// single EnsureInscription operation that returns a materialized
// artifact, idempotently, via the content store of C6 (spec §4.5).
package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zordinals/zordinals/chainwalker"
	"github.com/zordinals/zordinals/constants"
	"github.com/zordinals/zordinals/envelope"
	"github.com/zordinals/zordinals/id"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/script"
	"github.com/zordinals/zordinals/store"
)

// ErrNoInscription means the backward walk completed without ever
// finding an envelope (spec §7). Terminal for the reconstruction.
var ErrNoInscription = errors.New("zordinals: no inscription found on this chain")

// ErrIncompleteInscription flags a reconstruction whose spender chain
// was exhausted before every piece index was collected (spec §7). The
// artifact is still written with empty buffers standing in for the
// missing indices; this error is recorded in logs, never returned to
// the caller, since spec §7 requires "the implementation must still
// emit the artifact... downstream viewers expect the partial file to
// exist."
var ErrIncompleteInscription = errors.New("zordinals: inscription incomplete, spender chain exhausted")

// Result is EnsureInscription's return value (spec §4.5).
type Result struct {
	Buffer        []byte
	MimeType      string
	InscriptionId string
	FromCache     bool
}

// Caller is the RPC surface the reconstructor needs: the chain walker's
// own Caller, which the reconstructor also calls directly to re-fetch a
// transaction for its block height or a spender's continuation scriptSig.
type Caller interface {
	chainwalker.Caller
}

// Reconstructor orchestrates C3 (envelope/continuation decode) and C4
// (chain walking) into complete artifacts, persisted through C6.
type Reconstructor struct {
	caller Caller
	walker *chainwalker.Walker
	store  *store.Store

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	reconstructions prometheus.Counter
	incomplete      prometheus.Counter
}

// New builds a Reconstructor. walker must be built over the same
// caller, since the reconstructor also issues its own direct RPC calls
// (genesis height lookup, continuation script fetch).
func New(caller Caller, walker *chainwalker.Walker, contentStore *store.Store) *Reconstructor {
	return &Reconstructor{
		caller: caller,
		walker: walker,
		store:  contentStore,
		locks:  make(map[string]*sync.Mutex),
		reconstructions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zordinals_reconstructions_total",
			Help: "Total number of full (non-cached) inscription reconstructions performed.",
		}),
		incomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zordinals_incomplete_reconstructions_total",
			Help: "Total number of reconstructions that finished with missing piece indices.",
		}),
	}
}

// Describe/Collect let the caller register the reconstructor's own
// counters directly with a prometheus.Registry without a global
// default registry dependency.
func (r *Reconstructor) Describe(ch chan<- *prometheus.Desc) {
	r.reconstructions.Describe(ch)
	r.incomplete.Describe(ch)
}

func (r *Reconstructor) Collect(ch chan<- prometheus.Metric) {
	r.reconstructions.Collect(ch)
	r.incomplete.Collect(ch)
}

// lockFor returns the per-inscriptionId mutex, creating it on first use
// (spec §5: "a per-inscriptionId mutex is the recommended discipline").
func (r *Reconstructor) lockFor(inscriptionId string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	mu, ok := r.locks[inscriptionId]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[inscriptionId] = mu
	}
	return mu
}

// EnsureInscription implements spec §4.5. It normalizes idOrTxid,
// consults the content store for the two fast paths, and otherwise
// performs a full backward-walk-then-forward-spender-chain
// reconstruction.
func (r *Reconstructor) EnsureInscription(ctx context.Context, idOrTxid string) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "reconstruct.EnsureInscription")
	span.SetTag("inscription.idOrTxid", idOrTxid)
	defer span.Finish()

	normalized, err := id.Normalize(idOrTxid)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	canonicalId := normalized.String()
	span.SetTag("inscription.id", canonicalId)

	mu := r.lockFor(canonicalId)
	mu.Lock()
	defer mu.Unlock()

	if res, ok := r.fastPath(canonicalId); ok {
		span.SetTag("inscription.fromCache", true)
		return res, nil
	}

	res, err := r.reconstruct(ctx, canonicalId, normalized.GenesisTxid)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	return res, nil
}

// fastPath implements spec §4.5 steps 1 and 2: a hit in the master
// index whose file still exists, or a file on disk the index hasn't
// caught up to yet.
func (r *Reconstructor) fastPath(canonicalId string) (*Result, bool) {
	if rec, ok := r.store.Lookup(canonicalId); ok && r.store.FileExists(rec) {
		return &Result{MimeType: rec.MimeType, InscriptionId: canonicalId, FromCache: true}, true
	}

	filename, ok := r.store.FindFile(canonicalId)
	if !ok {
		return nil, false
	}
	mime := mimeFromFilename(filename)
	rec := store.ContentRecord{
		InscriptionId: canonicalId,
		Filename:      filename,
		MimeType:      mime,
		Ext:           extOf(filename),
	}
	if err := r.store.Upsert(rec); err != nil {
		log.Store.Errorf("registering found file %s into master index: %v", filename, err)
	}
	return &Result{MimeType: mime, InscriptionId: canonicalId, FromCache: true}, true
}

// reconstruct implements spec §4.5's "Full reconstruction" steps 1-7.
func (r *Reconstructor) reconstruct(ctx context.Context, canonicalId, baseTxid string) (*Result, error) {
	genesisTxid, hdr, err := r.walker.BackwardToGenesis(ctx, baseTxid)
	if err != nil {
		return nil, fmt.Errorf("zordinals: locating genesis for %s: %w", baseTxid, err)
	}
	if hdr == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInscription, baseTxid)
	}

	pieces := make(map[int][]byte, len(hdr.Pieces))
	for idx, data := range hdr.Pieces {
		pieces[idx] = data
	}
	total, mime := hdr.TotalPieces, hdr.MimeType

	height, confirmed, err := r.genesisHeight(ctx, genesisTxid)
	if err != nil {
		return nil, fmt.Errorf("zordinals: resolving genesis height for %s: %w", genesisTxid, err)
	}

	curTxid := genesisTxid
	complete := allPiecesPresent(pieces, total)
	for confirmed && !complete {
		spender, err := r.walker.ForwardSpender(ctx, curTxid, 0, height)
		if err != nil {
			return nil, fmt.Errorf("zordinals: scanning for spender of %s: %w", curTxid, err)
		}
		if spender == nil {
			break
		}

		spenderTx, err := r.caller.GetRawTransaction(ctx, spender.SpenderTxid)
		if err != nil {
			log.Recon.Debugf("fetching spender %s failed, stopping with partial pieces: %v", spender.SpenderTxid, err)
			break
		}
		if spender.VinIndex < len(spenderTx.Vin) {
			r.mergeContinuation(spenderTx.Vin[spender.VinIndex].ScriptSigHex, pieces, &total, &mime)
		}

		curTxid = spender.SpenderTxid
		height = spender.Height
		complete = allPiecesPresent(pieces, total)
	}

	if !complete {
		log.Recon.Warnf("%s: %v (total=%d, have=%d)", canonicalId, ErrIncompleteInscription, total, len(pieces))
		r.incomplete.Inc()
	}

	buf := concatenateDescending(pieces, total)
	ext := string(constants.ExtensionForMime(mime))
	filename := canonicalId + "." + ext

	if err := r.store.WriteArtifact(filename, buf); err != nil {
		return nil, fmt.Errorf("zordinals: writing artifact %s: %w", filename, err)
	}
	rec := store.ContentRecord{
		InscriptionId: canonicalId,
		Txid:          genesisTxid,
		Filename:      filename,
		MimeType:      mime,
		Ext:           ext,
		Size:          int64(len(buf)),
	}
	if err := r.store.Upsert(rec); err != nil {
		return nil, fmt.Errorf("zordinals: updating master index for %s: %w", canonicalId, err)
	}

	r.reconstructions.Inc()
	return &Result{Buffer: buf, MimeType: mime, InscriptionId: canonicalId, FromCache: false}, nil
}

// mergeContinuation decodes scriptSigHex in continuation mode and
// merges any extracted pieces into pieces using first-writer-wins
// (spec §4.5 step 4, §8's "First-writer-wins" invariant). Parse and
// decode failures are swallowed: the walk simply gained no new pieces
// from this transaction.
func (r *Reconstructor) mergeContinuation(scriptSigHex string, pieces map[int][]byte, total *int, mime *string) {
	chunks, err := script.Parse(scriptSigHex)
	if err != nil {
		log.Codec.Debugf("continuation script parse error, skipping: %v", err)
		return
	}
	newPieces, newTotal, newMime, ok := envelope.DecodeContinuation(chunks, *total, *mime)
	if !ok {
		return
	}
	*total, *mime = newTotal, newMime
	for idx, data := range newPieces {
		if _, exists := pieces[idx]; !exists {
			pieces[idx] = data
		}
	}
}

// genesisHeight resolves the confirmed block height of genesisTxid.
// confirmed is false when the transaction has no blockhash yet (spec
// §4.4 "unconfirmed genesis"), in which case the spender search cannot
// start and reconstruction proceeds with whatever pieces are already
// present.
func (r *Reconstructor) genesisHeight(ctx context.Context, genesisTxid string) (height int64, confirmed bool, err error) {
	tx, err := r.caller.GetRawTransaction(ctx, genesisTxid)
	if err != nil {
		return 0, false, err
	}
	if tx.BlockHash == "" {
		return 0, false, nil
	}
	block, err := r.caller.GetBlock(ctx, tx.BlockHash)
	if err != nil {
		return 0, false, err
	}
	return block.Height, true, nil
}

// allPiecesPresent implements the completeness predicate of spec §3:
// every index in [0, total) has an entry.
func allPiecesPresent(pieces map[int][]byte, total int) bool {
	for i := 0; i < total; i++ {
		if _, ok := pieces[i]; !ok {
			return false
		}
	}
	return true
}

// concatenateDescending implements spec §4.5 step 5 / §8's "Descending
// concatenation" invariant: pieces[total-1] .. pieces[0], missing
// indices contributing an empty buffer.
func concatenateDescending(pieces map[int][]byte, total int) []byte {
	var buf []byte
	for i := total - 1; i >= 0; i-- {
		buf = append(buf, pieces[i]...)
	}
	return buf
}

func mimeFromFilename(filename string) string {
	return constants.MimeForExtension(extOf(filename))
}

func extOf(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i+1:]
		}
	}
	return ""
}
