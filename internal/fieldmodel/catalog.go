package fieldmodel

// Catalog values are the labels of the prediction service's training data.
// Ordered catalogs are listed lowest first.

var industries = []string{
	"Agriculture and Allied Industries", "Auto Components", "Automobiles", "Aviation", "Ayush",
	"Banking", "Biotechnology", "Cement", "Chemicals", "Consumer Durables", "Defence Manufacturing",
	"E-Commerce", "Education and Training", "Electric Vehicle", "Electronics System Design & Manufacturing",
	"Engineering and Capital Goods", "Financial Services", "FMCG", "Food Processing", "Gems and Jewellery",
	"Healthcare", "Infrastructure", "Insurance", "IT & BPM", "Manufacturing", "Media and Entertainment",
	"Medical Devices", "Metals and Mining", "MSME", "Oil and Gas", "Paper & Packaging", "Pharmaceuticals",
	"Ports", "Power", "Railways", "Real Estate", "Renewable Energy", "Retail", "Roads", "Science and Technology",
	"Services", "Steel", "Telecommunications", "Textiles", "Tourism and Hospitality",
}

var headquartersRegions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
	"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
	"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal", "Jammu and Kashmir",
}

var revenueBands = []Option{
	{Value: "Less than $1M", Label: "Under $1M"},
	{Value: "$1M to $10M", Label: "$1M - $10M"},
	{Value: "$10M to $50M", Label: "$10M - $50M"},
	{Value: "$50M to $100M", Label: "$50M - $100M"},
	{Value: "$100M to $500M", Label: "$100M - $500M"},
	{Value: "$1B to $10B", Label: "$1B - $10B"},
	{Value: "$10B+", Label: "Over $10B"},
}

var employeeBands = []Option{
	{Value: "1-10", Label: "1-10 employees"},
	{Value: "11-50", Label: "11-50 employees"},
	{Value: "51-100", Label: "51-100 employees"},
	{Value: "101-250", Label: "101-250 employees"},
	{Value: "251-500", Label: "251-500 employees"},
	{Value: "501-1000", Label: "501-1000 employees"},
	{Value: "1001-5000", Label: "1001-5000 employees"},
}

var investmentStages = []string{"Seed", "Series A", "Series B", "Series C", "IPO"}

var fundingStatuses = []string{"Seed", "Early Stage Venture", "Growing", "M&A"}

var fundingAmountBands = []Option{
	{Value: "$0 to $1M", Label: "Up to $1M"},
	{Value: "$1M to $5M", Label: "$1M - $5M"},
	{Value: "$5M to $10M", Label: "$5M - $10M"},
	{Value: "$10M to $50M", Label: "$10M - $50M"},
	{Value: "$50M to $100M", Label: "$50M - $100M"},
	{Value: "$100M to $500M", Label: "$100M - $500M"},
}

var growthCategories = []string{"Medium", "Growing", "High"}

var growthConfidences = []string{"Low", "Medium", "High"}

func plain(values []string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}
