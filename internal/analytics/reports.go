package analytics

import "ecomdata/internal/schema"

// Report names.
const (
	TopCategoryPerCountry = "top_category_per_country"
	ProductPopularity     = "product_popularity_by_month"
	TopLocations          = "top_locations"
	HourlyTraffic         = "hourly_traffic"
	AverageOrderValue     = "average_order_value"
	PaymentImpact         = "payment_impact"
	FailureReasons        = "payment_failure_reasons"
)

type report struct {
	name     string
	title    string
	required []string
	query    string
}

// reports is the closed set of queries. Rows with a NULL grouping key are
// left out, the way a group-by over missing values drops them.
var reports = []report{
	{
		name:     TopCategoryPerCountry,
		title:    "Top-selling product category per country",
		required: []string{schema.CustomerCountry, schema.ProductCategory, schema.Quantity},
		query: `WITH totals AS (
  SELECT Customer_Country, Product_Category, COALESCE(SUM(Quantity_ordered), 0) AS Quantity_ordered
  FROM orders
  WHERE Customer_Country IS NOT NULL AND Product_Category IS NOT NULL
  GROUP BY Customer_Country, Product_Category
), ranked AS (
  SELECT Customer_Country, Product_Category, Quantity_ordered,
         ROW_NUMBER() OVER (PARTITION BY Customer_Country ORDER BY Quantity_ordered DESC, Product_Category) AS rn
  FROM totals
)
SELECT Customer_Country, Product_Category, Quantity_ordered
FROM ranked
WHERE rn = 1
ORDER BY Quantity_ordered DESC, Customer_Country`,
	},
	{
		name:     ProductPopularity,
		title:    "Product popularity per country per month",
		required: []string{schema.CustomerCountry, schema.OrderedAt, schema.ProductName, schema.Quantity},
		query: `SELECT Customer_Country,
       CAST(strftime('%m', Date_and_Time_When_Order_Was_Placed) AS INTEGER) AS Month,
       Product_Name,
       COALESCE(SUM(Quantity_ordered), 0) AS Quantity_ordered
FROM orders
WHERE Customer_Country IS NOT NULL AND Product_Name IS NOT NULL
  AND Date_and_Time_When_Order_Was_Placed IS NOT NULL
GROUP BY Customer_Country, Month, Product_Name
ORDER BY Customer_Country, Month, Product_Name`,
	},
	{
		name:     TopLocations,
		title:    "Top 10 locations by number of orders",
		required: []string{schema.CustomerCountry, schema.CustomerCity, schema.OrderID},
		query: `SELECT Customer_Country, Customer_City, COUNT(Order_Id) AS Order_Id
FROM orders
WHERE Customer_Country IS NOT NULL AND Customer_City IS NOT NULL
GROUP BY Customer_Country, Customer_City
ORDER BY Order_Id DESC, Customer_Country, Customer_City
LIMIT 10`,
	},
	{
		name:     HourlyTraffic,
		title:    "Orders per hour of day per country",
		required: []string{schema.CustomerCountry, schema.OrderedAt, schema.OrderID},
		query: `SELECT Customer_Country,
       CAST(strftime('%H', Date_and_Time_When_Order_Was_Placed) AS INTEGER) AS Hour,
       COUNT(Order_Id) AS Order_Id
FROM orders
WHERE Customer_Country IS NOT NULL AND Date_and_Time_When_Order_Was_Placed IS NOT NULL
GROUP BY Customer_Country, Hour
ORDER BY Customer_Country, Hour`,
	},
	{
		name:     AverageOrderValue,
		title:    "Average order value per category per country",
		required: []string{schema.CustomerCountry, schema.ProductCategory, schema.Quantity, schema.Price},
		query: `SELECT Customer_Country, Product_Category,
       AVG(Quantity_ordered * Price) AS Total_Order_Value
FROM orders
WHERE Customer_Country IS NOT NULL AND Product_Category IS NOT NULL
GROUP BY Customer_Country, Product_Category
ORDER BY Customer_Country, Product_Category`,
	},
	{
		name:     PaymentImpact,
		title:    "Orders per country, payment type and payment outcome",
		required: []string{schema.CustomerCountry, schema.PaymentType, schema.PaymentStatus, schema.OrderID},
		query: `SELECT Customer_Country, Payment_Type, Payment_Success_or_Failure, COUNT(Order_Id) AS Order_Id
FROM orders
WHERE Customer_Country IS NOT NULL AND Payment_Type IS NOT NULL AND Payment_Success_or_Failure IS NOT NULL
GROUP BY Customer_Country, Payment_Type, Payment_Success_or_Failure
ORDER BY Customer_Country, Payment_Type, Payment_Success_or_Failure`,
	},
	{
		name:     FailureReasons,
		title:    "Payment failure reasons per country",
		required: []string{schema.CustomerCountry, schema.PaymentStatus, schema.PaymentFailureReason, schema.PaymentConfirmationID},
		query: `SELECT Customer_Country, Payment_Failure_Reason,
       COUNT(Payment_Transaction_Confirmation_Id) AS failure_count
FROM orders
WHERE Payment_Success_or_Failure = 'N'
  AND Customer_Country IS NOT NULL AND Payment_Failure_Reason IS NOT NULL
GROUP BY Customer_Country, Payment_Failure_Reason
ORDER BY Customer_Country ASC, failure_count DESC, Payment_Failure_Reason`,
	},
}

func lookup(name string) (report, bool) {
	for _, r := range reports {
		if r.name == name {
			return r, true
		}
	}
	return report{}, false
}
