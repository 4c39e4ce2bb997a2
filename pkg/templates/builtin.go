package templates

// Built-in analytics templates registered on every Registry. Templates use
// :name bind markers (bound at execution time, never substituted textually)
// and {% if %} blocks for optional fragments.
var builtinTemplates = map[string]string{
	"customer_analysis": `
		SELECT
			o.order_id,
			p.product_name,
			o.amount,
			o.purchase_date
		FROM
			orders o
		JOIN
			products p ON o.product_id = p.product_id
		WHERE
			o.customer_id = :customer_id
			AND o.purchase_date BETWEEN :start_date AND :end_date
		{% if product_category %}
			AND p.category = :product_category
		{% endif %}
		ORDER BY
			o.purchase_date DESC
	`,

	"product_performance": `
		SELECT
			p.product_name,
			COUNT(o.order_id) as order_count,
			SUM(o.amount) as total_revenue
		FROM
			products p
		JOIN
			orders o ON p.product_id = o.product_id
		WHERE
			o.purchase_date BETWEEN :start_date AND :end_date
		{% if category_id %}
			AND p.category_id = :category_id
		{% endif %}
		GROUP BY
			p.product_id
		ORDER BY
			total_revenue DESC
		{% if limit %}
			LIMIT :limit
		{% endif %}
	`,

	"customer_segmentation": `
		SELECT
			c.customer_id,
			c.customer_name,
			c.email,
			COUNT(o.order_id) as total_orders,
			SUM(o.amount) as total_spent,
			AVG(o.amount) as avg_order_value,
			MAX(o.purchase_date) as last_purchase_date
		FROM
			customers c
		LEFT JOIN
			orders o ON c.customer_id = o.customer_id
		WHERE
			o.purchase_date BETWEEN :start_date AND :end_date
		{% if customer_region %}
			AND c.region = :customer_region
		{% endif %}
		GROUP BY
			c.customer_id
		{% if min_orders %}
			HAVING COUNT(o.order_id) >= :min_orders
		{% endif %}
		ORDER BY
			total_spent DESC
	`,

	"inventory_status": `
		SELECT
			p.product_id,
			p.product_name,
			i.quantity_in_stock,
			i.reorder_level,
			s.supplier_name,
			p.unit_price,
			(i.quantity_in_stock * p.unit_price) as inventory_value
		FROM
			products p
		JOIN
			inventory i ON p.product_id = i.product_id
		JOIN
			suppliers s ON p.supplier_id = s.supplier_id
		{% if low_stock_only %}
			WHERE i.quantity_in_stock <= i.reorder_level
		{% else %}
			WHERE 1=1
		{% endif %}
		{% if supplier_id %}
			AND p.supplier_id = :supplier_id
		{% endif %}
		{% if category_id %}
			AND p.category_id = :category_id
		{% endif %}
		ORDER BY
			{% if sort_by_stock %}
				i.quantity_in_stock ASC
			{% else %}
				p.product_name
			{% endif %}
	`,
}

var builtinMetadata = map[string]*Metadata{
	"customer_analysis": {
		Description: "Analyze customer order history",
		Required:    []string{"customer_id", "start_date", "end_date"},
		Optional:    []string{"product_category"},
		Types: map[string]ParamType{
			"customer_id":      TypeInteger,
			"start_date":       TypeDate,
			"end_date":         TypeDate,
			"product_category": TypeString,
		},
	},
	"product_performance": {
		Description: "Analyze product sales performance",
		Required:    []string{"start_date", "end_date"},
		Optional:    []string{"category_id", "limit"},
		Types: map[string]ParamType{
			"start_date":  TypeDate,
			"end_date":    TypeDate,
			"category_id": TypeInteger,
			"limit":       TypeInteger,
		},
	},
	"customer_segmentation": {
		Description: "Segment customers based on purchase behavior",
		Required:    []string{"start_date", "end_date"},
		Optional:    []string{"customer_region", "min_orders"},
		Types: map[string]ParamType{
			"start_date":      TypeDate,
			"end_date":        TypeDate,
			"customer_region": TypeString,
			"min_orders":      TypeInteger,
		},
	},
	"inventory_status": {
		Description: "Check inventory levels and value",
		Required:    []string{},
		Optional:    []string{"low_stock_only", "supplier_id", "category_id", "sort_by_stock"},
		Types: map[string]ParamType{
			"low_stock_only": TypeBoolean,
			"supplier_id":    TypeInteger,
			"category_id":    TypeInteger,
			"sort_by_stock":  TypeBoolean,
		},
	},
}
