package shopify

// Product is a Shopify Admin REST product, reduced to what the broker
// reads back after creation.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Handle      string    `json:"handle"`
	Status      string    `json:"status"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
}

type Variant struct {
	ID                  int64  `json:"id,omitempty"`
	ProductID           int64  `json:"product_id,omitempty"`
	Title               string `json:"title,omitempty"`
	Price               string `json:"price"`
	SKU                 string `json:"sku"`
	InventoryPolicy     string `json:"inventory_policy,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
	InventoryQuantity   int    `json:"inventory_quantity"`
	Taxable             bool   `json:"taxable"`
}

// Image carries either a remote source URL or inline base64 content.
// Shopify accepts Attachment at product-creation time, which is what
// lets the importer avoid a separate media-upload phase.
type Image struct {
	ID         int64  `json:"id,omitempty"`
	Src        string `json:"src,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Alt        string `json:"alt,omitempty"`
}

// Shop is the subset of shop.json the prober surfaces as platform
// metadata.
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	Currency        string `json:"currency"`
	CountryCode     string `json:"country_code"`
	Timezone        string `json:"timezone"`
	PlanDisplayName string `json:"plan_display_name"`
	MyshopifyDomain string `json:"myshopify_domain"`
}
