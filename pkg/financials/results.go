package financials

// Results is the full output of one evaluation. It is returned by value and
// never updated; a new evaluation produces a new record.
type Results struct {
	// Assumptions echoes the inputs the results were computed from.
	Assumptions Assumptions `json:"assumptions"`

	Production     Production     `json:"production"`
	Revenue        Revenue        `json:"revenue"`
	Costs          Costs          `json:"costs"`
	Profit         Profit         `json:"profit"`
	WorkingCapital WorkingCapital `json:"workingCapital"`
	Financing      Financing      `json:"financing"`
	Ratios         Ratios         `json:"ratios"`

	// ByproductCapacityExceeded is set when the byproduct sales target is
	// above what the process generates; sales are capped at generation.
	ByproductCapacityExceeded bool `json:"byproductCapacityExceeded"`
}

// Production holds volumes in kg. Daily figures are per operating day.
type Production struct {
	DailyPaddy   float64 `json:"dailyPaddy"`
	MonthlyPaddy float64 `json:"monthlyPaddy"`
	AnnualPaddy  float64 `json:"annualPaddy"`

	DailyProduct   float64 `json:"dailyProduct"`
	MonthlyProduct float64 `json:"monthlyProduct"`
	AnnualProduct  float64 `json:"annualProduct"`

	DailyByproductGenerated   float64 `json:"dailyByproductGenerated"`
	MonthlyByproductGenerated float64 `json:"monthlyByproductGenerated"`
	AnnualByproductGenerated  float64 `json:"annualByproductGenerated"`

	DailyByproductTarget float64 `json:"dailyByproductTarget"`
	DailyByproductSold   float64 `json:"dailyByproductSold"`
	MonthlyByproductSold float64 `json:"monthlyByproductSold"`
	AnnualByproductSold  float64 `json:"annualByproductSold"`
}

// Revenue holds sales in currency.
type Revenue struct {
	DailyProductSales   float64 `json:"dailyProductSales"`
	MonthlyProductSales float64 `json:"monthlyProductSales"`
	AnnualProductSales  float64 `json:"annualProductSales"`

	DailyByproductSales   float64 `json:"dailyByproductSales"`
	MonthlyByproductSales float64 `json:"monthlyByproductSales"`
	AnnualByproductSales  float64 `json:"annualByproductSales"`

	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// Costs holds cost of goods sold and operating costs.
type Costs struct {
	DailyCOGS   float64 `json:"dailyCogs"`
	MonthlyCOGS float64 `json:"monthlyCogs"`
	AnnualCOGS  float64 `json:"annualCogs"`

	VariableCostPerKg   float64 `json:"variableCostPerKg"`
	MonthlyVariableCost float64 `json:"monthlyVariableCost"`
	AnnualVariableCost  float64 `json:"annualVariableCost"`

	MonthlyFixedCost float64 `json:"monthlyFixedCost"`
	AnnualFixedCost  float64 `json:"annualFixedCost"`

	// AnnualOperatingCost is fixed plus variable operating cost.
	AnnualOperatingCost float64 `json:"annualOperatingCost"`
	AnnualDepreciation  float64 `json:"annualDepreciation"`
}

// Profit holds the annual profit lines.
type Profit struct {
	GrossProfit        float64 `json:"grossProfit"`
	ContributionMargin float64 `json:"contributionMargin"`
	EBITDA             float64 `json:"ebitda"`
	EBIT               float64 `json:"ebit"`
	EBT                float64 `json:"ebt"`
	Tax                float64 `json:"tax"`
	NetProfit          float64 `json:"netProfit"`
}

// WorkingCapital holds the cash tied up in operations. Run-rates are annual
// flows spread over 365 calendar days.
type WorkingCapital struct {
	DailyCOGSRunRate         float64 `json:"dailyCogsRunRate"`
	DailyVariableCostRunRate float64 `json:"dailyVariableCostRunRate"`
	DailyRevenueRunRate      float64 `json:"dailyRevenueRunRate"`
	UnitCostOfProduction     float64 `json:"unitCostOfProduction"`

	RawMaterialInventory   float64 `json:"rawMaterialInventory"`
	FinishedGoodsInventory float64 `json:"finishedGoodsInventory"`
	Receivables            float64 `json:"receivables"`
	Payables               float64 `json:"payables"`

	CurrentAssets      float64 `json:"currentAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	NetWorkingCapital  float64 `json:"netWorkingCapital"`
}

// Financing holds the capital structure and interest charges.
type Financing struct {
	TotalCapex               float64 `json:"totalCapex"`
	Equity                   float64 `json:"equity"`
	Debt                     float64 `json:"debt"`
	InterestOnDebt           float64 `json:"interestOnDebt"`
	InterestOnWorkingCapital float64 `json:"interestOnWorkingCapital"`
	TotalInterest            float64 `json:"totalInterest"`
	TotalAssets              float64 `json:"totalAssets"`
	CapitalEmployed          float64 `json:"capitalEmployed"`
}

// Ratios holds percentages. Margins are 0 without revenue; ROCE and ROE are
// unbounded without a capital base.
type Ratios struct {
	GrossMarginPct        float64 `json:"grossMarginPct"`
	ContributionMarginPct float64 `json:"contributionMarginPct"`
	EBITDAMarginPct       float64 `json:"ebitdaMarginPct"`
	OperatingMarginPct    float64 `json:"operatingMarginPct"`
	NetProfitMarginPct    float64 `json:"netProfitMarginPct"`

	ROCE Figure `json:"roce"`
	ROE  Figure `json:"roe"`
}
