package ledger

// Movement table paging: the first page shows PageFirst rows and every
// "more" step reveals PageStep more.
const (
	PageFirst = 10
	PageStep  = 20
)

// Page clamps a requested row count to [PageFirst, total] and reports
// whether rows remain hidden. Requests below PageFirst, including
// non-positive ones, show the first page.
func Page(total, shown int) (visible int, more bool) {
	if shown < PageFirst {
		shown = PageFirst
	}
	if shown > total {
		shown = total
	}
	return shown, shown < total
}

// NextPage returns the row count after one "more" step.
func NextPage(total, shown int) int {
	if shown < PageFirst {
		shown = PageFirst
	}
	return min(shown+PageStep, total)
}
