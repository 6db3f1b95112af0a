package pdfmeta

import "testing"

func TestScanForDOIIndicatorLine(t *testing.T) {
	pages := []string{
		"A Paper Title That Is Long Enough\n" +
			"Jane Author, John Author\n" +
			"https://doi.org/10.1016/j.artint.2021.103535\n" +
			"Abstract. We study things.\n",
	}

	if got := ScanForDOI(pages); got != "10.1016/j.artint.2021.103535" {
		t.Errorf("ScanForDOI = %q", got)
	}
}

func TestScanForDOIBareIdentifier(t *testing.T) {
	// No indicator word on the line at all; the second pass must find it.
	pages := []string{
		"Some Long Paper Title Goes Here\n" +
			"10.5555/123456.789\n",
	}

	if got := ScanForDOI(pages); got != "10.5555/123456.789" {
		t.Errorf("ScanForDOI = %q", got)
	}
}

func TestScanForDOILaterPage(t *testing.T) {
	pages := []string{
		"First page with no identifier anywhere\n",
		"Second page, also nothing\n",
		"Copyright 2021. doi: 10.1109/TNNLS.2021.3054321\n",
	}

	if got := ScanForDOI(pages); got != "10.1109/tnnls.2021.3054321" {
		t.Errorf("ScanForDOI = %q", got)
	}
}

func TestScanForDOINothing(t *testing.T) {
	pages := []string{"No identifier here\n", "Nor here\n"}
	if got := ScanForDOI(pages); got != "" {
		t.Errorf("ScanForDOI = %q, want empty", got)
	}
}

func TestGuessTitle(t *testing.T) {
	firstPage := "IEEE\n" +
		"Journal of Latex Class Files, Vol. 14\n" +
		"Self-Supervised Learning for Robotic Grasping in Cluttered Scenes\n" +
		"Jane Author and John Author\n"

	got := GuessTitle(firstPage)
	want := "Self-Supervised Learning for Robotic Grasping in Cluttered Scenes"
	if got != want {
		t.Errorf("GuessTitle = %q, want %q", got, want)
	}
}

func TestGuessTitleSkipsHeaders(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			"copyright filtered",
			"Copyright 2020 by the Association for Computing Machinery\n" +
				"A Sufficiently Long Real Title for This Paper\n",
			"A Sufficiently Long Real Title for This Paper",
		},
		{
			"volume issue header filtered",
			"Transactions, Volume 7, Issue 3, September 2019\n" +
				"Another Sufficiently Long Real Title Here\n",
			"Another Sufficiently Long Real Title Here",
		},
		{
			"short lines never win",
			"Short line\nTiny\n",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessTitle(tt.page); got != tt.want {
				t.Errorf("GuessTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractUnreadableFile(t *testing.T) {
	if m := Extract("testdata/does-not-exist.pdf"); m.DOI != "" || m.Title != "" {
		t.Errorf("Extract on missing file = %+v, want zero metadata", m)
	}
}
