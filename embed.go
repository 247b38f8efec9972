package folio

import "embed"

// EmbeddedAssets contains the stylesheet and favicon served under /assets.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
