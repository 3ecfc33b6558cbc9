// Package seed loads the initial jewellery catalog into the document store.
package seed

import (
	"context"
	"fmt"

	"github.com/peachwood/api/internal/repositories"
	"github.com/peachwood/api/internal/services"
)

func intPtr(v int) *int { return &v }

// Products returns the starter catalog matching the storefront. Stock levels
// vary per product; availability defaults to in stock.
func Products() []services.ProductInput {
	return []services.ProductInput{
		{
			Name:        "Eternal Grace Necklace",
			Price:       189.99,
			Category:    "Necklaces",
			Description: "A delicate handcrafted necklace featuring a teardrop pendant with intricate filigree work. Perfect for both everyday elegance and special occasions.",
			ImageURL:    "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800&q=80",
			Details: []string{
				"18K gold-plated brass",
				"Adjustable chain length: 16-18 inches",
				"Hypoallergenic",
				"Handcrafted with care",
			},
			StockQuantity: intPtr(50),
		},
		{
			Name:        "Celestial Stud Earrings",
			Price:       79.99,
			Category:    "Earrings",
			Description: "Minimalist star-shaped studs that catch the light beautifully. These versatile earrings add a touch of sparkle to any outfit.",
			ImageURL:    "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800&q=80",
			Details: []string{
				"Sterling silver with cubic zirconia",
				"Post back closure",
				"Diameter: 8mm",
				"Tarnish-resistant coating",
			},
			StockQuantity: intPtr(100),
		},
		{
			Name:        "Infinity Love Ring",
			Price:       129.99,
			Category:    "Rings",
			Description: "A timeless symbol of eternal love, this delicate infinity ring is perfect for stacking or wearing alone as a statement piece.",
			ImageURL:    "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800&q=80",
			Details: []string{
				"14K rose gold plated",
				"Available in sizes 5-9",
				"Width: 2mm",
				"Nickel-free",
			},
			StockQuantity: intPtr(75),
		},
		{
			Name:        "Pearl Drops Earrings",
			Price:       149.99,
			Category:    "Earrings",
			Description: "Elegant freshwater pearl drops suspended from delicate gold hooks. These earrings exude sophistication and timeless beauty.",
			ImageURL:    "https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800&q=80",
			Details: []string{
				"Genuine freshwater pearls",
				"14K gold-filled hooks",
				"Pearl size: 10-11mm",
				"Length: 1.5 inches",
			},
			StockQuantity: intPtr(60),
		},
		{
			Name:        "Moonstone Pendant",
			Price:       199.99,
			Category:    "Necklaces",
			Description: "A mystical moonstone centerpiece surrounded by a halo of micro-pave crystals, creating an ethereal glow against your skin.",
			ImageURL:    "https://images.unsplash.com/photo-1603561591411-07134e71a2a9?w=800&q=80",
			Details: []string{
				"Natural moonstone (8mm)",
				"Sterling silver setting",
				"Chain length: 18 inches",
				"Lobster clasp closure",
			},
			StockQuantity: intPtr(40),
		},
		{
			Name:        "Vintage Rose Bracelet",
			Price:       169.99,
			Category:    "Bracelets",
			Description: "Inspired by Victorian gardens, this bracelet features hand-carved rose motifs with subtle antique finishing.",
			ImageURL:    "https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800&q=80",
			Details: []string{
				"Antique gold plating",
				"Adjustable length: 7-8 inches",
				"Toggle clasp",
				"Hand-engraved details",
			},
			StockQuantity: intPtr(45),
		},
		{
			Name:        "Geometric Cuff Bangle",
			Price:       139.99,
			Category:    "Bracelets",
			Description: "Modern and bold, this architectural cuff makes a statement with clean lines and a sophisticated matte finish.",
			ImageURL:    "https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?w=800&q=80",
			Details: []string{
				"Brushed brass with matte coating",
				"Width: 15mm",
				"Adjustable opening",
				"Tarnish-resistant",
			},
			StockQuantity: intPtr(80),
		},
		{
			Name:        "Diamond Halo Ring",
			Price:       299.99,
			Category:    "Rings",
			Description: "A stunning centerpiece surrounded by a brilliant halo of pavé-set stones. Perfect for engagements or as a luxurious treat.",
			ImageURL:    "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800&q=80",
			Details: []string{
				"Cubic zirconia stones",
				"14K white gold plated",
				"Available in sizes 5-9",
				"Total carat weight: 2.5ct equivalent",
			},
			StockQuantity: intPtr(30),
		},
		{
			Name:        "Layered Chain Necklace",
			Price:       159.99,
			Category:    "Necklaces",
			Description: "Three delicate chains of varying lengths create a perfectly layered look. Minimalist yet impactful.",
			ImageURL:    "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800&q=80",
			Details: []string{
				"Triple-layer design",
				"14K gold vermeil",
				"Lengths: 14, 16, 18 inches",
				"Spring ring clasps",
			},
			StockQuantity: intPtr(65),
		},
		{
			Name:        "Sapphire Teardrop Earrings",
			Price:       219.99,
			Category:    "Earrings",
			Description: "Rich blue sapphire-colored stones in an elegant teardrop setting. These earrings add a pop of color and luxury.",
			ImageURL:    "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800&q=80",
			Details: []string{
				"Synthetic sapphire",
				"Sterling silver setting",
				"Stone size: 12x8mm",
				"French hook backs",
			},
			StockQuantity: intPtr(55),
		},
		{
			Name:        "Twisted Band Ring",
			Price:       99.99,
			Category:    "Rings",
			Description: "A unique twisted design that catches light from every angle. Perfect for everyday wear or special occasions.",
			ImageURL:    "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800&q=80",
			Details: []string{
				"Sterling silver",
				"Width: 3mm",
				"Available in sizes 5-9",
				"High-polish finish",
			},
			StockQuantity: intPtr(90),
		},
		{
			Name:        "Charm Bracelet Set",
			Price:       179.99,
			Category:    "Bracelets",
			Description: "Customize your story with this delicate chain bracelet featuring three interchangeable charms representing love, hope, and dreams.",
			ImageURL:    "https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800&q=80",
			Details: []string{
				"14K gold-plated chain",
				"Includes 3 charms",
				"Length: 7.5 inches",
				"Lobster clasp closure",
			},
			StockQuantity: intPtr(70),
		},
	}
}

// Result summarises a completed seed run.
type Result struct {
	Removed int
	Created []string
}

// Run clears the existing catalog and inserts the starter products through the
// catalog service so the usual validation and defaults apply.
func Run(ctx context.Context, catalog services.CatalogService, products repositories.ProductRepository) (Result, error) {
	var result Result
	if catalog == nil || products == nil {
		return result, fmt.Errorf("seed: catalog service and product repository are required")
	}

	existing, err := products.List(ctx, repositories.ProductListFilter{})
	if err != nil {
		return result, fmt.Errorf("seed: list existing products: %w", err)
	}
	for _, product := range existing {
		if err := products.Delete(ctx, product.ID); err != nil {
			return result, fmt.Errorf("seed: delete product %s: %w", product.ID, err)
		}
		result.Removed++
	}

	for _, input := range Products() {
		created, err := catalog.CreateProduct(ctx, input)
		if err != nil {
			return result, fmt.Errorf("seed: create product %q: %w", input.Name, err)
		}
		result.Created = append(result.Created, fmt.Sprintf("%s - $%.2f", created.Name, created.Price))
	}
	return result, nil
}
