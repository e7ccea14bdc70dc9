package quality

import "github.com/primeinsights/proof-engine/internal/types"

// Category identifies one of the recognized e-commerce export
// datasets. The ordinal value is the category's position in the packed
// score record and is part of the wire contract: it never changes.
type Category int

const (
	CategoryRetailCartItems Category = iota
	CategoryDigitalItems
	CategoryRetailOrderHistory1
	CategoryRetailOrderHistory2
	CategoryAudiblePurchases
	CategoryAudibleLibrary
	CategoryAudibleBillings
	CategoryPrimeVideoViewing

	// NumCategories is the fixed width of the packed record.
	NumCategories = 8
)

type categorySpec struct {
	fileName string
	label    string
	extract  func([]types.RawRow) (*Metadata, error)
	score    func(*Metadata, *Thresholds) ComponentScore
}

// registry is the closed dispatch table keyed by category ordinal.
// A test asserts every slot is populated.
var registry = [NumCategories]categorySpec{
	CategoryRetailCartItems: {
		fileName: "Retail.CartItems.1.csv",
		label:    "Retail Cart Items",
		extract:  extractCartItems,
		score:    scoreCartItems,
	},
	CategoryDigitalItems: {
		fileName: "Digital Items.csv",
		label:    "Digital Items",
		extract:  extractDigitalItems,
		score:    scoreDigitalItems,
	},
	CategoryRetailOrderHistory1: {
		fileName: "Retail.OrderHistory.1.csv",
		label:    "Retail Order History",
		extract:  extractOrderHistory,
		score:    scoreOrderHistory,
	},
	CategoryRetailOrderHistory2: {
		fileName: "Retail.OrderHistory.2.csv",
		label:    "Retail Order History",
		extract:  extractOrderHistory,
		score:    scoreOrderHistory,
	},
	CategoryAudiblePurchases: {
		fileName: "Audible.PurchaseHistory.csv",
		label:    "Audible Purchase History",
		extract:  extractAudiblePurchases,
		score:    scoreAudiblePurchases,
	},
	CategoryAudibleLibrary: {
		fileName: "Audible.Library.csv",
		label:    "Audible Library",
		extract:  extractAudibleLibrary,
		score:    scoreAudibleLibrary,
	},
	CategoryAudibleBillings: {
		fileName: "Audible.MembershipBillings.csv",
		label:    "Audible Membership Billings",
		extract:  extractAudibleBillings,
		score:    scoreAudibleBillings,
	},
	CategoryPrimeVideoViewing: {
		fileName: "PrimeVideo.ViewingHistory.csv",
		label:    "Prime Video Viewing History",
		extract:  extractPrimeVideoViewing,
		score:    scorePrimeVideoViewing,
	},
}

// FileName returns the canonical, case-sensitive source file name.
func (c Category) FileName() string {
	return registry[c].fileName
}

// Label returns the human-readable dataset name used in evaluator rubrics.
func (c Category) Label() string {
	return registry[c].label
}

func (c Category) String() string {
	return registry[c].fileName
}

// Categories returns all recognized categories in ordinal order.
func Categories() []Category {
	cats := make([]Category, NumCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}

// CategoryForFile resolves a canonical file name to its category.
func CategoryForFile(name string) (Category, bool) {
	for _, c := range Categories() {
		if registry[c].fileName == name {
			return c, true
		}
	}
	return 0, false
}
