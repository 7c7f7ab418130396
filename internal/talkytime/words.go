package talkytime

import "strings"

func reverseHashify(s string) map[string]int {
	out := make(map[string]int)
	for i, word := range strings.Fields(s) {
		out[word] = i
	}
	return out
}

var (
	dayWords = reverseHashify(
		"sunday monday tuesday wednesday thursday friday saturday")
	monthWords = reverseHashify(
		"january february march april may june july august september october november december")
	ordinalWords = reverseHashify(
		"zeroth    first    second  third      fourth     fifth     sixth     seventh     eighth     ninth " +
			"tenth     eleventh twelfth thirteenth fourteenth fifteenth sixteenth seventeenth eighteenth nineteenth " +
			"twentieth 21st     22nd    23rd       24th       25th      26th      27th        28th       29th " +
			"thirtieth")

	// corrections maps PocketSphinx mishears of spoken digits to the word they
	// should have been.
	corrections = map[string]string{"why": "one", "oh": "zero"}

	// numberWords covers the single-word numeral vocabulary actually produced
	// by the grammar: ones, teens, and tens, plus the "hundred"/"thousand"
	// scale words used while parsing years. Compound numbers ("twenty one")
	// always arrive as separate words, so no multi-word table is needed.
	numberWords = map[string]int{
		"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
		"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
		"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
		"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
		"hundred": 100, "thousand": 1000,
	}

	abbreviatedWeekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// toNum converts a single spoken-number word to an integer, applying the
// mishear corrections first. Returns false if word is not a recognized
// number word.
func toNum(word string) (int, bool) {
	if fixed, ok := corrections[word]; ok {
		word = fixed
	}
	n, ok := numberWords[word]
	return n, ok
}
