package catalog

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var chineseOrdinals = []string{
	"零", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十",
	"十一", "十二", "十三", "十四", "十五", "十六", "十七", "十八", "十九", "二十",
}

var arabicPrefix = regexp.MustCompile(`^(\d+)[、.\s]`)

// numberPrefix extracts a leading ordinal such as "三、" or "12." from a
// folder or file name.
func numberPrefix(s string) (int, bool) {
	for i, n := range chineseOrdinals {
		for _, sep := range []string{"、", ".", " "} {
			if strings.HasPrefix(s, n+sep) {
				return i, true
			}
		}
	}
	if m := arabicPrefix.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// NumberPrefixLess orders names by their leading ordinal. Numbered names
// come before unnumbered ones; equal or missing numbers fall back to byte
// order.
func NumberPrefixLess(a, b string) bool {
	return compareNumberPrefix(a, b) < 0
}

func compareNumberPrefix(a, b string) int {
	na, oka := numberPrefix(a)
	nb, okb := numberPrefix(b)
	switch {
	case oka && okb:
		if na != nb {
			return na - nb
		}
	case oka:
		return -1
	case okb:
		return 1
	}
	return strings.Compare(a, b)
}

// SortNames sorts names in place by NumberPrefixLess.
func SortNames(names []string) {
	slices.SortFunc(names, compareNumberPrefix)
}
