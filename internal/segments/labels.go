package segments

import "fmt"

// Labels maps cluster indices to business segment names. The table is
// maintained by hand and must be re-checked against the centroids after
// every retrain.
type Labels map[int]string

// DefaultLabels is the segment table used by the serving process.
var DefaultLabels = Labels{
	0: "Hibernating",
	1: "Champions",
	2: "Loyal Customers",
	3: "At Risk",
	4: "New Customers",
}

// Name returns the segment name for id, or "Segment <id>" when unmapped.
func (l Labels) Name(id int) string {
	if name, ok := l[id]; ok {
		return name
	}
	return fmt.Sprintf("Segment %d", id)
}

// Unnamed returns the cluster ids in [0, k) that fall back to a generated name.
func (l Labels) Unnamed(k int) []int {
	var ids []int
	for id := range k {
		if _, ok := l[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Action is a recommended marketing action for a segment.
type Action struct {
	Title  string
	Detail string
}

var actions = map[int]Action{
	0: {
		Title:  "We Miss You",
		Detail: "Send a win-back coupon to bring this customer back before they lapse for good.",
	},
	1: {
		Title:  "VIP Early Access",
		Detail: "Offer early access to new collections and premium perks.",
	},
	2: {
		Title:  "Loyalty Program",
		Detail: "Invite the customer into the loyalty program and reward repeat orders.",
	},
	3: {
		Title:  "Churn Risk Discount",
		Detail: "Send a time-limited discount before the customer churns.",
	},
}

// RecommendedAction returns the action for cluster id, if one is defined.
func RecommendedAction(id int) (Action, bool) {
	a, ok := actions[id]
	return a, ok
}
