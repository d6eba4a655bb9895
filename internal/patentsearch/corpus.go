package patentsearch

import (
	"fmt"
	"strings"
)

var corpusAssignees = []string{
	"TechCorp Industries Inc.",
	"Innovate Systems LLC",
	"Global Dynamics Corporation",
	"Precision Engineering Co.",
	"Advanced Research Labs",
	"NextGen Solutions Inc.",
	"Quantum Ventures Ltd.",
	"Apex Technologies Group",
}

var corpusInventors = [][]string{
	{"James Chen", "Maria Rodriguez"},
	{"Sarah Kim"},
	{"David Okafor", "Liu Wei", "Anna Petrov"},
	{"Michael Tanaka"},
	{"Elena Vasquez", "Robert Singh"},
}

var corpusTitleTemplates = []string{
	"System and method for %s",
	"Apparatus for improved %s",
	"Method of %s with enhanced efficiency",
	"%s optimization system",
	"Integrated %s architecture",
	"Adaptive %s control mechanism",
	"Distributed %s processing framework",
	"Automated %s management platform",
}

// generateCorpus produces a deterministic set of plausible patents
// seeded from the query keywords. The same query always yields the
// same documents, which keeps offline scoring reproducible.
func generateCorpus(q Query) []Patent {
	n := q.MaxResults
	if n > 20 {
		n = 20
	}

	subject := "technology"
	if len(q.Keywords) > 0 {
		subject = strings.ToLower(strings.Join(firstN(q.Keywords, 3), " "))
	}

	ipc := q.IPCClassifications
	if len(ipc) == 0 {
		ipc = []string{"G06F"}
	}

	patents := make([]Patent, 0, n)
	for i := 0; i < n; i++ {
		number := 10000000 + i*12345
		title := fmt.Sprintf(corpusTitleTemplates[i%len(corpusTitleTemplates)], subject)
		year := 2015 + i%10
		month := 1 + i%12

		patents = append(patents, Patent{
			PatentID: fmt.Sprintf("US%dB2", number),
			Title:    title,
			Abstract: fmt.Sprintf(
				"A system relating to %s is disclosed. The invention provides improvements in reliability, throughput, and resource utilization over conventional approaches to %s.",
				subject, subject),
			Claims: []string{
				fmt.Sprintf("1. A method for %s comprising receiving input data, processing the data according to a predetermined configuration, and producing an output.", subject),
				fmt.Sprintf("2. The method of claim 1, wherein the %s is performed in a distributed environment.", subject),
			},
			PublicationDate:    fmt.Sprintf("%04d-%02d-15", year, month),
			Assignee:           corpusAssignees[i%len(corpusAssignees)],
			Inventors:          corpusInventors[i%len(corpusInventors)],
			IPCClassifications: firstN(ipc, 2),
			Source:             SourceGenerated,
		})
	}
	return patents
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
