package sitepress

import "embed"

// EmbeddedAssets contains static assets shipped with the binary:
// site.js (hx-* partial updates, login error auto-clear, delete confirmation).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
