package support

var (
	PlanFor  = planFor
	LoadBand = loadBand
)
