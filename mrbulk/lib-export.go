// Package mrbulk exposes the search, selection and retrieval building blocks for use as a library.
package mrbulk

import (
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/fileio"
	"github.com/leocov-dev/mrbulk/sources"
)

type (
	PackageSummary  = core.PackageSummary
	PackageVersion  = core.PackageVersion
	FileArtifact    = core.FileArtifact
	SearchRequest   = core.SearchRequest
	CompiledQuery   = core.CompiledQuery
	SelectionStore  = core.SelectionStore
	SelectionEntry  = core.SelectionEntry
	ResolveOptions  = core.ResolveOptions
	SessionOptions  = core.SessionOptions
	SearchSession   = core.SearchSession
	Orchestrator    = core.Orchestrator
	Report          = core.Report
	ProgressEvent   = core.ProgressEvent
	Registry        = core.Registry
	RegistryOptions = sources.RegistryOptions
	BundleFormat    = fileio.BundleFormat
)

var (
	CompileQuery        = core.CompileQuery
	NewSelectionStore   = core.NewSelectionStore
	NewResolver         = core.NewResolver
	NewSearchSession    = core.NewSearchSession
	NewOrchestrator     = core.NewOrchestrator
	WithBundler         = core.WithBundler
	WithCheckpointStep  = core.WithCheckpointStep
	NewModrinthRegistry = sources.NewModrinthRegistry
	NewModrinthAnalyzer = sources.NewModrinthAnalyzer
	NewHTTPFetcher      = sources.NewHTTPFetcher
	NewDirSink          = fileio.NewDirSink
	NewBundler          = fileio.NewBundler
)
