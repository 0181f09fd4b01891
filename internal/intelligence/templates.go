package intelligence

import (
	"fmt"
	"math/rand"
	"strings"
)

// Selector picks an index in [0, n). Tests inject a fixed selector to get
// deterministic reminder text.
type Selector func(n int) int

// RandomSelector picks uniformly at random
func RandomSelector(n int) int {
	return rand.Intn(n)
}

// FixedSelector always picks index i (wrapped into range)
func FixedSelector(i int) Selector {
	return func(n int) int {
		return i % n
	}
}

// MaxReminderProducts is how many regular products a reminder mentions
const MaxReminderProducts = 3

var reminderWithProducts = []string{
	"Hi %s! It's been a little while since your last order. Running low on %s? Just reply here and we'll set it up for you.",
	"Hello %s, hope all is well! Want us to get %s ready for you again?",
	"Hey %s! Usually around now you restock %s. Shall we prepare your usual order?",
	"Hi %s, just checking in. Need %s this week? Reply with what you'd like and we'll handle the rest.",
}

var reminderGeneric = []string{
	"Hi %s! It's been a little while since your last order. Need anything this week? Just reply here.",
	"Hello %s, hope all is well! Let us know if you'd like to place your usual order.",
	"Hey %s! Ready to restock? Reply here and we'll take care of it.",
}

// ComposeReminder builds a reorder reminder mentioning up to three regular products
func ComposeReminder(customerName string, products []string, pick Selector) string {
	if pick == nil {
		pick = RandomSelector
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = "there"
	}

	if len(products) > MaxReminderProducts {
		products = products[:MaxReminderProducts]
	}
	if len(products) == 0 {
		return fmt.Sprintf(reminderGeneric[pick(len(reminderGeneric))], name)
	}
	return fmt.Sprintf(reminderWithProducts[pick(len(reminderWithProducts))], name, JoinProductNames(products))
}

// JoinProductNames renders names as "A", "A and B" or "A, B and C"
func JoinProductNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
