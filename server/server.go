// Package server exposes the one slice of the out-of-scope HTTP façade
// the core interacts with directly (spec §1): a content-serving
// endpoint that triggers reconstruction on demand. Everything else the
// real façade does (node RPC passthrough, wallet routes, static pages)
// stays an external collaborator; this handler exists only so
// EnsureInscription and the dependency resolver have a caller besides
// the CLI. Grounded on the teacher's
// inscription/server/handle/content.go route shape and its gin.Engine
// wiring in inscription/server/srv.go.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zordinals/zordinals/deps"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/reconstruct"
	"github.com/zordinals/zordinals/store"
)

// Reconstructor is the subset of *reconstruct.Reconstructor the content
// handler needs.
type Reconstructor interface {
	EnsureInscription(ctx context.Context, idOrTxid string) (*reconstruct.Result, error)
}

// Handler serves decoded inscription content over HTTP.
type Handler struct {
	recon    Reconstructor
	resolver *deps.Resolver
	store    *store.Store
}

// New builds a Handler over recon, resolving HTML/SVG dependencies
// through resolver before serving them and reading cache-hit artifacts
// back off contentStore when EnsureInscription returned no buffer.
func New(recon Reconstructor, resolver *deps.Resolver, contentStore *store.Store) *Handler {
	return &Handler{recon: recon, resolver: resolver, store: contentStore}
}

// Register mounts the content route onto engine, mirroring the
// teacher's router.go's one-route-per-call style.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/content/:inscriptionId", h.Content)
}

// Content implements spec §6.1's inbound surface for a single id:
// ensure the inscription is decoded (triggering dependency resolution
// when it's HTML/SVG), then stream the artifact bytes with its
// recorded mime type.
func (h *Handler) Content(ctx *gin.Context) {
	inscriptionId := ctx.Param("inscriptionId")
	if inscriptionId == "" {
		ctx.Status(http.StatusBadRequest)
		return
	}

	res, err := h.recon.EnsureInscription(ctx.Request.Context(), inscriptionId)
	if err != nil {
		log.Srv.Errorf("ensuring %s: %v", inscriptionId, err)
		ctx.Status(http.StatusNotFound)
		return
	}

	if h.resolver != nil {
		if err := h.resolver.Resolve(ctx.Request.Context(), res); err != nil {
			log.Srv.Warnf("resolving dependencies of %s: %v", inscriptionId, err)
		}
	}

	buf, err := h.artifactBytes(res)
	if err != nil {
		log.Srv.Errorf("reading artifact for %s: %v", inscriptionId, err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.Header("Cache-Control", "public, max-age=1209600, immutable")
	ctx.Data(http.StatusOK, res.MimeType, buf)
}

// artifactBytes returns res's content bytes, reading them off disk via
// the master index when res came from the content-store fast path and
// EnsureInscription left Buffer nil (reconstruct/reconstruct.go's
// fastPath never re-reads the file it already knows exists).
func (h *Handler) artifactBytes(res *reconstruct.Result) ([]byte, error) {
	if res.Buffer != nil {
		return res.Buffer, nil
	}
	rec, ok := h.store.Lookup(res.InscriptionId)
	if !ok {
		return nil, fmt.Errorf("zordinals: no master index entry for %s", res.InscriptionId)
	}
	return h.store.ReadArtifact(rec.Filename)
}

// NewEngine builds a gin.Engine with the content route registered,
// matching the teacher's release-mode default (gin.Default includes
// its own logger/recovery middleware, which this repo's own logging
// package doesn't need to duplicate).
func NewEngine(h *Handler) *gin.Engine {
	engine := gin.Default()
	h.Register(engine)
	return engine
}
