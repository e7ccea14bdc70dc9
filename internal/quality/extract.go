package quality

import (
	"math"

	"github.com/primeinsights/proof-engine/internal/types"
)

// ExtractMetadata aggregates the raw rows of one category file into
// its structural metadata. A date value in an unrecognized format is
// fatal and aborts extraction for the whole file; numeric parse
// failures are lenient and count as zero.
func ExtractMetadata(category Category, rows []types.RawRow) (*Metadata, error) {
	md, err := registry[category].extract(rows)
	if err != nil {
		return nil, err
	}
	md.Category = category
	return md, nil
}

// observeDate folds a single date field into a range, skipping empty
// values. Only a non-empty unparseable value is an error.
func observeDate(dr DateRange, field, value string) (DateRange, error) {
	if value == "" {
		return dr, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return dr, err
	}
	return dr.observe(t), nil
}

func extractCartItems(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	products := make(map[string]struct{})

	for _, row := range rows {
		if q := row["Quantity"]; q != "" {
			md.TotalQuantity += parseCount(q)
		}
		if asin := row["ASIN"]; asin != "" {
			products[asin] = struct{}{}
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "DateAddedToCart", row["DateAddedToCart"])
		if err != nil {
			return nil, err
		}

		md.countInto("cart_lists", row["CartList"])
		md.countInto("one_click_buyable", row["OneClickBuyable"])
		md.countInto("gift_wrapped", row["ToBeGiftWrapped"])
		md.countInto("prime_subscription", row["PrimeSubscription"])
		md.countInto("pantry", row["Pantry"])
		md.countInto("addon", row["AddOn"])
	}

	md.UniqueProducts = len(products)
	return md, nil
}

func extractDigitalItems(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	products := make(map[string]struct{})
	orders := make(map[string]struct{})

	for _, row := range rows {
		if asin := row["ASIN"]; asin != "" {
			products[asin] = struct{}{}
		}
		if id := row["OrderId"]; id != "" {
			orders[id] = struct{}{}
		}

		md.countInto("countries", row["DeclaredCountryCode"])
		md.countInto("currencies", row["BaseCurrencyCode"])
		md.TotalAmount += parseAmount(row["ListPriceAmount"])

		// Rows without a fulfilled order carry the literal
		// "Not Applicable" in either date column; they contribute
		// nothing to the activity window.
		if row["OrderDate"] == "Not Applicable" || row["FulfilledDate"] == "Not Applicable" {
			continue
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "OrderDate", row["OrderDate"])
		if err != nil {
			return nil, err
		}
		md.DateRange, err = observeDate(md.DateRange, "FulfilledDate", row["FulfilledDate"])
		if err != nil {
			return nil, err
		}
	}

	md.UniqueProducts = len(products)
	md.UniqueOrders = len(orders)
	md.TotalAmount = round2(md.TotalAmount)
	return md, nil
}

func extractOrderHistory(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	products := make(map[string]struct{})
	giftOrders := 0

	for _, row := range rows {
		if v := row["Total Owed"]; v != "" {
			md.TotalAmount += parseAmount(v)
		}
		if v := row["Quantity"]; v != "" {
			md.TotalQuantity += parseCount(v)
		}
		if asin := row["ASIN"]; asin != "" {
			products[asin] = struct{}{}
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "Order Date", row["Order Date"])
		if err != nil {
			return nil, err
		}

		md.countInto("websites", row["Website"])
		md.countInto("payment_methods", row["Payment Instrument Type"])
		md.countInto("order_statuses", row["Order Status"])

		if v := row["Shipping Charge"]; v != "" {
			md.TotalShipping += parseAmount(v)
		}
		if v := row["Total Discounts"]; v != "" {
			md.TotalDiscounts += parseAmount(v)
		}
		if v := row["Unit Price"]; v != "" {
			if price := parseAmount(v); price > md.MostExpensiveItem {
				md.MostExpensiveItem = price
			}
		}
		if row["Gift Message"] != "Not Available" {
			giftOrders++
		}
	}

	md.UniqueProducts = len(products)
	md.TotalAmount = round2(md.TotalAmount)
	md.TotalShipping = round2(md.TotalShipping)
	md.TotalDiscounts = round2(md.TotalDiscounts)
	md.MostExpensiveItem = round2(md.MostExpensiveItem)

	if md.NumRecords > 0 {
		md.AvgOrderValue = round2(md.TotalAmount / float64(md.NumRecords))
		md.AvgItemsPerOrder = round2(float64(md.TotalQuantity) / float64(md.NumRecords))
		md.GiftOrdersPct = round2(float64(giftOrders) / float64(md.NumRecords) * 100)
	}

	return md, nil
}

func extractAudiblePurchases(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	audiobooks := make(map[string]struct{})

	for _, row := range rows {
		if v := row["Price Paid Member"]; v != "" {
			md.TotalAmount += parseAmount(v)
		}
		if asin := row["ASIN"]; asin != "" {
			audiobooks[asin] = struct{}{}
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "Order Place Date", row["Order Place Date"])
		if err != nil {
			return nil, err
		}

		md.countInto("purchase_types", row["Type"])
		md.countInto("statuses", row["Status"])
	}

	md.UniqueProducts = len(audiobooks)
	md.TotalAmount = round2(md.TotalAmount)
	return md, nil
}

func extractAudibleLibrary(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	audiobooks := make(map[string]struct{})

	for _, row := range rows {
		if asin := row["ASIN"]; asin != "" {
			audiobooks[asin] = struct{}{}
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "Date Added", row["Date Added"])
		if err != nil {
			return nil, err
		}

		md.countInto("downloaded", row["Downloaded"])
		md.countInto("deleted", row["Deleted"])
		md.countInto("origin_types", row["Origin Type"])
	}

	md.UniqueProducts = len(audiobooks)
	return md, nil
}

func extractAudibleBillings(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}

	for _, row := range rows {
		if v := row["Total Amount"]; v != "" {
			md.TotalAmount += parseAmount(v)
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "Billing Period Start Date", row["Billing Period Start Date"])
		if err != nil {
			return nil, err
		}

		md.countInto("plans", row["Plan"])
		md.countInto("statuses", row["Status"])
		md.countInto("currencies", row["Currency"])
	}

	md.TotalAmount = round2(md.TotalAmount)
	return md, nil
}

func extractPrimeVideoViewing(rows []types.RawRow) (*Metadata, error) {
	md := &Metadata{NumRecords: len(rows)}
	titles := make(map[string]struct{})
	totalSeconds := 0.0

	for _, row := range rows {
		if v := row["Seconds Viewed"]; v != "" {
			totalSeconds += parseAmount(v)
		}
		if title := row["Title"]; title != "" {
			titles[title] = struct{}{}
		}

		var err error
		md.DateRange, err = observeDate(md.DateRange, "Playback Start Datetime (UTC)", row["Playback Start Datetime (UTC)"])
		if err != nil {
			return nil, err
		}

		md.countInto("content_qualities", row["Content Quality Delivered"])
		md.countInto("devices_used", row["Device Manufacturer Name"])
	}

	md.UniqueProducts = len(titles)
	md.TotalHours = round2(totalSeconds / 3600)
	return md, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
