package catalog

// builtinTemplates is the shipped template set. Recover restores a tier from here
// when its built-in list ends up empty.
var builtinTemplates = map[Tier][]Template{
	TierS: {
		{Name: "Full data analysis", BaseScore: 80, Duration: "2-3h", Description: "Run a complete analysis pipeline: cleaning, statistics and interpretation of results"},
		{Name: "Finish a chapter", BaseScore: 100, Duration: "3-4h", Description: "Write a complete chapter of a paper or report, including literature and structure"},
		{Name: "Prepare a full deck", BaseScore: 90, Duration: "2-3h", Description: "Build a complete slide deck for an academic talk, content and visuals"},
		{Name: "Run an experiment set", BaseScore: 85, Duration: "2-4h", Description: "Carry out a full set of experiments: preparation, execution and data logging"},
	},
	TierA: {
		{Name: "Close-read a paper", BaseScore: 50, Duration: "1-1.5h", Description: "Read one paper in depth with detailed notes and critical thinking"},
		{Name: "Preprocess data", BaseScore: 45, Duration: "1h", Description: "Clean, format and organise raw data"},
		{Name: "Write the methods", BaseScore: 55, Duration: "1-1.5h", Description: "Write the methods section: study design and technical approach"},
		{Name: "Make a figure", BaseScore: 40, Duration: "0.5-1h", Description: "Produce one high-quality data visualisation"},
		{Name: "Run a model", BaseScore: 45, Duration: "1h", Description: "Configure and run one training or simulation job"},
	},
	TierB: {
		{Name: "Handle academic email", BaseScore: 25, Duration: "30min", Description: "Reply to advisors, collaborators or reviewers"},
		{Name: "Skim a paper", BaseScore: 30, Duration: "30min", Description: "Skim one paper for its main content and conclusions"},
		{Name: "Polish a figure", BaseScore: 20, Duration: "20min", Description: "Improve the look and readability of an existing figure"},
		{Name: "Tidy the library", BaseScore: 20, Duration: "30min", Description: "Sort and tag papers in the reference manager"},
		{Name: "Brainstorm", BaseScore: 25, Duration: "20min", Description: "Think through research ideas, designs or fixes"},
	},
	TierC: {
		{Name: "Research journal", BaseScore: 10, Duration: "10min", Description: "Note today's progress, ideas or blockers"},
		{Name: "Search new papers", BaseScore: 12, Duration: "15min", Description: "Search databases for recent related work"},
		{Name: "Check data quality", BaseScore: 10, Duration: "10min", Description: "Check experiment data or analysis output for quality and completeness"},
		{Name: "Academic networking", BaseScore: 8, Duration: "5min", Description: "Engage on academic social platforms or follow the field"},
		{Name: "Tidy the workspace", BaseScore: 5, Duration: "10min", Description: "Tidy the bench, desk or project folders"},
	},
}

// DefaultTemplates returns a copy of the shipped templates for a tier.
func DefaultTemplates(t Tier) []Template {
	src := builtinTemplates[t]
	out := make([]Template, len(src))
	copy(out, src)
	return out
}
