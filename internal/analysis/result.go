package analysis

// Result is the backend's analysis response. Only FinancialReport and
// ReportURL are required; the rest is passed through to presentation.
type Result struct {
	Status string `json:"status"`
	// Message accompanies status "error".
	Message         string           `json:"message,omitempty"`
	RoofAnalysis    RoofAnalysis     `json:"roof_analysis"`
	FinancialReport *FinancialReport `json:"financial_report"`
	ReportURL       string           `json:"pdf_url"`
}

// RoofAnalysis is the computer-vision half of the report.
type RoofAnalysis struct {
	TotalAreaM2      float64 `json:"total_area_m2"`
	DetectionCount   int     `json:"detection_count"`
	AnnotatedImage   string  `json:"annotated_image"` // base64 JPEG
	IsEstimated      bool    `json:"is_estimated"`
	EstimationReason string  `json:"estimation_reason"`
	Warning          string  `json:"warning,omitempty"`
}

// FinancialReport is the sizing and return-on-investment half of the report.
type FinancialReport struct {
	RecommendedSystemKW   float64 `json:"recommended_system_kw"`
	MaxRoofCapacityKW     float64 `json:"max_roof_capacity_kw"`
	EffectiveMaxKW        float64 `json:"effective_max_kw"`
	MonthlyGenerationKWh  float64 `json:"monthly_generation_kwh"`
	TariffRate            float64 `json:"tariff_rate"`
	NormalMonthlyIncome   float64 `json:"normal_monthly_income"`
	BatteryMonthlyEarning float64 `json:"battery_monthly_earning"`
	BatteryExtraProfit    float64 `json:"battery_extra_profit"`
	TotalInvestmentLKR    float64 `json:"total_investment_lkr"`
	PaybackPeriodYears    float64 `json:"payback_period"`
	LoanInstallment       float64 `json:"loan_installment"`
	NetMonthlyResult      float64 `json:"net_monthly_result"`
	Note                  string  `json:"note"`
}
