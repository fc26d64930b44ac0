package cli

var (
	PrintDraft        = printDraft
	PrintIngestResult = printIngestResult
	GetIndexConfig    = getIndexConfig
	RunMigrate        = runMigrate
)
