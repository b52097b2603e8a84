// Package collections creates and seeds the PocketBase collections backing
// the solar business manager: customers, projects, the material and service
// catalog, quotations, invoices and the document number sequences.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically ensures all collections exist.
func Setup(app *pocketbase.PocketBase) {
	customers := ensureCollection(app, "customers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "contact_person"})
		c.Fields.Add(&core.TextField{Name: "street"})
		c.Fields.Add(&core.TextField{Name: "zip"})
		c.Fields.Add(&core.TextField{Name: "city"})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			Required:     true,
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"planning", "active", "completed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "site_street"})
		c.Fields.Add(&core.TextField{Name: "site_zip"})
		c.Fields.Add(&core.TextField{Name: "site_city"})
		c.Fields.Add(&core.NumberField{Name: "kwp"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "materials", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "article_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "purchase_price", Required: true})
		c.Fields.Add(&core.TextField{Name: "supplier"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_materials_article_number", true, "article_number", "")
	})

	ensureCollection(app, "service_positions", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "position_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.SelectField{
			Name:     "category",
			Required: true,
			Values: []string{
				"module_mounting", "substructure", "roof_work",
				"inverter", "cabling", "meter_cabinet", "grid_connection",
				"scaffolding", "other",
			},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		// 0 means the configured default markup applies.
		c.Fields.Add(&core.NumberField{Name: "markup_percent"})
		c.Fields.Add(&core.JSONField{Name: "bill_of_materials"})
		c.Fields.Add(&core.JSONField{Name: "bill_of_labor"})
		c.Fields.Add(&core.JSONField{Name: "replaces"})
		c.Fields.Add(&core.BoolField{Name: "default_position"})
		c.Fields.Add(&core.JSONField{Name: "calculated"})
		c.Fields.Add(&core.BoolField{Name: "prices_stale"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_service_positions_number", true, "position_number", "")
	})

	ensureCollection(app, "settings", func(c *core.Collection) {
		c.Fields.Add(&core.JSONField{Name: "hourly_rates"})
		c.Fields.Add(&core.NumberField{Name: "default_markup_percent"})
		c.Fields.Add(&core.NumberField{Name: "default_tax_rate"})
		c.Fields.Add(&core.JSONField{Name: "labor_factors"})
		c.Fields.Add(&core.JSONField{Name: "quantity_tiers"})
		c.Fields.Add(&core.BoolField{Name: "tiers_enabled"})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	quotations := ensureCollection(app, "quotations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "number", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "project",
			CollectionId: projects.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "accepted", "rejected", "expired"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "line_items"})
		c.Fields.Add(&core.JSONField{Name: "factor_selection"})
		addTotalsFields(c)
		c.Fields.Add(&core.TextField{Name: "valid_until"})
		c.Fields.Add(&core.TextField{Name: "payment_terms"})
		c.Fields.Add(&core.TextField{Name: "delivery_terms"})
		c.Fields.Add(&core.NumberField{Name: "version"})
		c.Fields.Add(&core.JSONField{Name: "history"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotations_number", true, "number", "")
	})

	ensureCollection(app, "invoices", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "number", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"full", "deposit", "final"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "quotation",
			CollectionId: quotations.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "project",
			CollectionId: projects.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "paid", "overdue", "cancelled"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "deposit_percent"})
		c.Fields.Add(&core.NumberField{Name: "deposit_amount"})
		c.Fields.Add(&core.TextField{Name: "summary_text"})
		c.Fields.Add(&core.JSONField{Name: "line_items"})
		addTotalsFields(c)
		c.Fields.Add(&core.TextField{Name: "payment_terms"})
		c.Fields.Add(&core.NumberField{Name: "version"})
		c.Fields.Add(&core.JSONField{Name: "history"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_invoices_number", true, "number", "")
	})

	// The deposit_invoice back-reference is added after creation because it
	// points at the invoices collection itself.
	ensureSelfRelation(app, "invoices", "deposit_invoice")

	ensureCollection(app, "sequences", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "prefix"})
		c.Fields.Add(&core.NumberField{Name: "last_value"})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_sequences_name", true, "name", "")
	})
}

// addTotalsFields adds the shared money breakdown columns of quotations and
// invoices.
func addTotalsFields(c *core.Collection) {
	c.Fields.Add(&core.NumberField{Name: "subtotal_net"})
	c.Fields.Add(&core.NumberField{Name: "labor_reduction_total"})
	c.Fields.Add(&core.NumberField{Name: "discount_percent"})
	c.Fields.Add(&core.NumberField{Name: "discount_amount"})
	c.Fields.Add(&core.NumberField{Name: "net_total"})
	c.Fields.Add(&core.NumberField{Name: "tax_rate"})
	c.Fields.Add(&core.NumberField{Name: "tax_amount"})
	c.Fields.Add(&core.NumberField{Name: "gross_total"})
	c.Fields.Add(&core.NumberField{Name: "module_count"})
	c.Fields.Add(&core.TextField{Name: "applied_tier"})
}

// ensureCollection checks if a collection already exists by name. If it
// does, the existing collection is returned. Otherwise a new base
// collection is created, the addFields callback populates its fields, and
// the collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

// ensureSelfRelation adds a single-select relation field pointing at the
// collection itself, skipping when the field already exists.
func ensureSelfRelation(app *pocketbase.PocketBase, collectionName, fieldName string) {
	collection, err := app.FindCollectionByNameOrId(collectionName)
	if err != nil {
		log.Fatalf("Failed to find collection %q for self relation: %v", collectionName, err)
	}
	if collection.Fields.GetByName(fieldName) != nil {
		return
	}

	collection.Fields.Add(&core.RelationField{
		Name:         fieldName,
		CollectionId: collection.Id,
		MaxSelect:    1,
	})
	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to add %s.%s relation: %v", collectionName, fieldName, err)
	}
}
