package constants

// ContentType is a mime type string as declared in an inscription
// envelope header.
type ContentType string

// Extension is a filename extension, without the leading dot.
type Extension string

// ExtensionBin is the fallback extension for a mime type not present in
// Medias (spec §4.5 step 6, §9 "mime -> extension" note).
const ExtensionBin Extension = "bin"

// Media pairs a mime type with the extensions it is known to be stored
// under. The writer and findFile reader both consult this table so the
// filename they agree on is always <id>.<ext>.
type Media struct {
	ContentType ContentType
	Extensions  []Extension
}

// Medias is the shared mime <-> extension table, trimmed from the
// teacher's constants.Medias to the types the reconstructor actually
// decodes (no inscribe-time codec negotiation, so BrotliMode is dropped).
var Medias = []Media{
	{"application/json", []Extension{"json"}},
	{"application/pdf", []Extension{"pdf"}},
	{"application/octet-stream", []Extension{"bin"}},
	{"application/yaml", []Extension{"yaml", "yml"}},
	{"audio/flac", []Extension{"flac"}},
	{"audio/mpeg", []Extension{"mp3"}},
	{"audio/wav", []Extension{"wav"}},
	{"font/otf", []Extension{"otf"}},
	{"font/ttf", []Extension{"ttf"}},
	{"font/woff", []Extension{"woff"}},
	{"font/woff2", []Extension{"woff2"}},
	{"image/apng", []Extension{"apng"}},
	{"image/gif", []Extension{"gif"}},
	{"image/jpeg", []Extension{"jpg", "jpeg"}},
	{"image/png", []Extension{"png"}},
	{"image/svg+xml", []Extension{"svg"}},
	{"image/webp", []Extension{"webp"}},
	{"model/gltf+json", []Extension{"gltf"}},
	{"model/gltf-binary", []Extension{"glb"}},
	{"model/stl", []Extension{"stl"}},
	{"text/css", []Extension{"css"}},
	{"text/html", []Extension{"html"}},
	{"text/html;charset=utf-8", []Extension{"html"}},
	{"text/javascript", []Extension{"js"}},
	{"text/markdown", []Extension{"md"}},
	{"text/markdown;charset=utf-8", []Extension{"md"}},
	{"text/plain", []Extension{"txt"}},
	{"text/plain;charset=utf-8", []Extension{"txt"}},
	{"video/mp4", []Extension{"mp4"}},
	{"video/webm", []Extension{"webm"}},
}

// ExtensionForMime returns the canonical extension for a mime type,
// falling back to ExtensionBin when the type is unrecognized.
func ExtensionForMime(mime string) Extension {
	for _, m := range Medias {
		if string(m.ContentType) == mime && len(m.Extensions) > 0 {
			return m.Extensions[0]
		}
	}
	return ExtensionBin
}

// MimeForExtension is ExtensionForMime's inverse, used when a file is
// found on disk (spec §4.5 fast path 2) and its mime type must be
// derived from its extension alone. Falls back to
// "application/octet-stream" for an extension not in Medias.
func MimeForExtension(ext string) string {
	for _, m := range Medias {
		for _, e := range m.Extensions {
			if string(e) == ext {
				return string(m.ContentType)
			}
		}
	}
	return "application/octet-stream"
}

// IsHTMLOrSVG reports whether mime is one of the two content types the
// dependency resolver (C7) recurses into.
func IsHTMLOrSVG(mime string) bool {
	return mime == "text/html" || mime == "image/svg+xml"
}
