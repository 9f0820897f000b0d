package waste

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ecotrackth/ecotrack-backend/internal/classifier"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// Category is one closed catalog record. NameTH carries the Thai display
// name used by the voice matcher alongside the English one.
type Category struct {
	ID       string   `json:"id"`
	NameEN   string   `json:"nameEn"`
	NameTH   string   `json:"nameTh"`
	Keywords []string `json:"keywords"`
	// BaseCredits is credits per kilogram by disposal method. Landfill
	// entries are negative: throwing recyclables away costs credits.
	BaseCredits map[enums.DisposalMethod]int64 `json:"baseCredits"`
}

// Catalog is the validated category set, looked up by stable ID.
type Catalog struct {
	categories []Category
	byID       map[string]Category
}

// defaultCategories ships with the binary; a JSON file can override it.
var defaultCategories = []Category{
	{
		ID:       "plastic_bottle",
		NameEN:   "Plastic bottle",
		NameTH:   "ขวดพลาสติก",
		Keywords: []string{"plastic", "bottle", "pet", "ขวด", "พลาสติก"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodRecycle:  10,
			enums.DisposalMethodReuse:    12,
			enums.DisposalMethodLandfill: -5,
		},
	},
	{
		ID:       "glass",
		NameEN:   "Glass",
		NameTH:   "แก้ว",
		Keywords: []string{"glass", "jar", "แก้ว", "ขวดแก้ว"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodRecycle:  8,
			enums.DisposalMethodReuse:    10,
			enums.DisposalMethodLandfill: -4,
		},
	},
	{
		ID:       "paper",
		NameEN:   "Paper",
		NameTH:   "กระดาษ",
		Keywords: []string{"paper", "cardboard", "box", "กระดาษ", "กล่อง"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodRecycle:  6,
			enums.DisposalMethodReuse:    7,
			enums.DisposalMethodCompost:  3,
			enums.DisposalMethodLandfill: -3,
		},
	},
	{
		ID:       "food_waste",
		NameEN:   "Food waste",
		NameTH:   "เศษอาหาร",
		Keywords: []string{"food", "organic", "scraps", "เศษอาหาร", "อาหาร"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodCompost:  9,
			enums.DisposalMethodLandfill: -6,
		},
	},
	{
		ID:       "metal_can",
		NameEN:   "Metal can",
		NameTH:   "กระป๋อง",
		Keywords: []string{"can", "metal", "aluminium", "tin", "กระป๋อง", "โลหะ"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodRecycle:  12,
			enums.DisposalMethodReuse:    8,
			enums.DisposalMethodLandfill: -5,
		},
	},
	{
		ID:       "e_waste",
		NameEN:   "Electronic waste",
		NameTH:   "ขยะอิเล็กทรอนิกส์",
		Keywords: []string{"electronic", "battery", "phone", "แบตเตอรี่", "อิเล็กทรอนิกส์", "มือถือ"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodRecycle: 15,
			enums.DisposalMethodHazard:  20,
			// E-waste in the general bin is the worst outcome in the table.
			enums.DisposalMethodLandfill: -15,
		},
	},
	{
		ID:       "general",
		NameEN:   "General waste",
		NameTH:   "ขยะทั่วไป",
		Keywords: []string{"general", "trash", "other", "ขยะ", "ทั่วไป"},
		BaseCredits: map[enums.DisposalMethod]int64{
			enums.DisposalMethodLandfill: 1,
			enums.DisposalMethodHazard:   4,
		},
	},
}

// LoadCatalog builds the catalog from the JSON file at path, or from the
// built-in set when path is empty. The catalog is validated before use; a
// bad file fails startup rather than silently serving a partial table.
func LoadCatalog(path string) (*Catalog, error) {
	categories := defaultCategories
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read category file: %w", err)
		}
		var loaded []Category
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse category file: %w", err)
		}
		categories = loaded
	}
	return NewCatalog(categories)
}

// NewCatalog validates the record set and indexes it by ID.
func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("category catalog is empty")
	}

	byID := make(map[string]Category, len(categories))
	for _, category := range categories {
		if category.ID == "" {
			return nil, fmt.Errorf("category with empty id")
		}
		if _, dup := byID[category.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", category.ID)
		}
		if category.NameEN == "" || category.NameTH == "" {
			return nil, fmt.Errorf("category %q missing a display name", category.ID)
		}
		if len(category.BaseCredits) == 0 {
			return nil, fmt.Errorf("category %q has no credit table", category.ID)
		}
		for method := range category.BaseCredits {
			if !method.IsValid() {
				return nil, fmt.Errorf("category %q has unknown method %q", category.ID, method)
			}
		}
		byID[category.ID] = category
	}

	return &Catalog{categories: categories, byID: byID}, nil
}

// Categories returns the full record set in catalog order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Lookup returns the category for the given stable ID.
func (c *Catalog) Lookup(id string) (Category, bool) {
	category, ok := c.byID[id]
	return category, ok
}

// ClassifierCandidates adapts the catalog for the voice classifier.
func (c *Catalog) ClassifierCandidates() []classifier.Candidate {
	candidates := make([]classifier.Candidate, 0, len(c.categories))
	for _, category := range c.categories {
		candidates = append(candidates, classifier.Candidate{
			CategoryID: category.ID,
			NameEN:     category.NameEN,
			NameTH:     category.NameTH,
			Keywords:   category.Keywords,
		})
	}
	return candidates
}
