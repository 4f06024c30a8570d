package domain

import (
	"fmt"
	"math"
)

// BalanceSheet represents one period's statement of financial position
type BalanceSheet struct {
	// Current assets
	Cash                 float64 `json:"cash"`
	ShortTermInvestments float64 `json:"shortTermInvestments"`
	AccountsReceivable   float64 `json:"accountsReceivable"`
	Inventory            float64 `json:"inventory"`
	PrepaidExpenses      float64 `json:"prepaidExpenses"`
	OtherCurrentAssets   float64 `json:"otherCurrentAssets"`
	TotalCurrentAssets   float64 `json:"totalCurrentAssets"`

	// Non-current assets
	PropertyPlantEquipment float64 `json:"propertyPlantEquipment"` // Net of accumulated depreciation
	IntangibleAssets       float64 `json:"intangibleAssets"`
	Goodwill               float64 `json:"goodwill"`
	LongTermInvestments    float64 `json:"longTermInvestments"`
	OtherNonCurrentAssets  float64 `json:"otherNonCurrentAssets"`
	TotalNonCurrentAssets  float64 `json:"totalNonCurrentAssets"`
	TotalAssets            float64 `json:"totalAssets"`

	// Current liabilities
	AccountsPayable            float64 `json:"accountsPayable"`
	ShortTermDebt              float64 `json:"shortTermDebt"`
	CurrentPortionLongTermDebt float64 `json:"currentPortionLongTermDebt"`
	AccruedLiabilities         float64 `json:"accruedLiabilities"`
	OtherCurrentLiabilities    float64 `json:"otherCurrentLiabilities"`
	TotalCurrentLiabilities    float64 `json:"totalCurrentLiabilities"`

	// Non-current liabilities
	LongTermDebt               float64 `json:"longTermDebt"`
	DeferredTaxLiabilities     float64 `json:"deferredTaxLiabilities"`
	OtherNonCurrentLiabilities float64 `json:"otherNonCurrentLiabilities"`
	TotalNonCurrentLiabilities float64 `json:"totalNonCurrentLiabilities"`
	TotalLiabilities           float64 `json:"totalLiabilities"`

	// Equity
	ShareCapital     float64 `json:"shareCapital"`
	RetainedEarnings float64 `json:"retainedEarnings"`
	OtherEquity      float64 `json:"otherEquity"`
	TotalEquity      float64 `json:"totalEquity"`
}

// TotalDebt returns interest-bearing debt (short-term, current portion and long-term)
func (b BalanceSheet) TotalDebt() float64 {
	return b.ShortTermDebt + b.CurrentPortionLongTermDebt + b.LongTermDebt
}

// WorkingCapital returns current assets less current liabilities
func (b BalanceSheet) WorkingCapital() float64 {
	return b.TotalCurrentAssets - b.TotalCurrentLiabilities
}

// IncomeStatement represents one period's statement of profit or loss
type IncomeStatement struct {
	Revenue                  float64 `json:"revenue"`
	CostOfGoodsSold          float64 `json:"costOfGoodsSold"`
	GrossProfit              float64 `json:"grossProfit"`
	SellingGeneralAdmin      float64 `json:"sellingGeneralAdmin"`
	ResearchDevelopment      float64 `json:"researchDevelopment"`
	DepreciationAmortization float64 `json:"depreciationAmortization"`
	OtherOperatingExpenses   float64 `json:"otherOperatingExpenses"`
	TotalOperatingExpenses   float64 `json:"totalOperatingExpenses"`
	OperatingIncome          float64 `json:"operatingIncome"`
	InterestExpense          float64 `json:"interestExpense"` // Positive amount
	InterestIncome           float64 `json:"interestIncome"`
	OtherNonOperating        float64 `json:"otherNonOperating"`
	IncomeBeforeTax          float64 `json:"incomeBeforeTax"`
	IncomeTaxExpense         float64 `json:"incomeTaxExpense"`
	NetIncome                float64 `json:"netIncome"`

	// Per-share figures as supplied by the ingestion step
	EarningsPerShare  float64 `json:"earningsPerShare"`
	DividendsPerShare float64 `json:"dividendsPerShare"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	SharePrice        float64 `json:"sharePrice"` // Period-end market price, never fetched
}

// EBITDA returns operating income plus depreciation and amortization
func (i IncomeStatement) EBITDA() float64 {
	return i.OperatingIncome + i.DepreciationAmortization
}

// CashFlowStatement represents one period's statement of cash flows
type CashFlowStatement struct {
	// Operating activities
	NetIncome                float64 `json:"netIncome"`
	DepreciationAmortization float64 `json:"depreciationAmortization"`
	ChangeInWorkingCapital   float64 `json:"changeInWorkingCapital"`
	OtherOperatingActivities float64 `json:"otherOperatingActivities"`
	NetCashFromOperations    float64 `json:"netCashFromOperations"`

	// Investing activities (outflows negative)
	CapitalExpenditures      float64 `json:"capitalExpenditures"`
	Acquisitions             float64 `json:"acquisitions"`
	OtherInvestingActivities float64 `json:"otherInvestingActivities"`
	NetCashFromInvesting     float64 `json:"netCashFromInvesting"`

	// Financing activities (outflows negative)
	DebtIssued               float64 `json:"debtIssued"`
	DebtRepaid               float64 `json:"debtRepaid"`
	DividendsPaid            float64 `json:"dividendsPaid"`
	ShareRepurchases         float64 `json:"shareRepurchases"`
	OtherFinancingActivities float64 `json:"otherFinancingActivities"`
	NetCashFromFinancing     float64 `json:"netCashFromFinancing"`

	NetCashFlow   float64 `json:"netCashFlow"`
	BeginningCash float64 `json:"beginningCash"`
	EndingCash    float64 `json:"endingCash"`
}

// FreeCashFlow returns operating cash flow less capital expenditure.
// Capital expenditure is accepted with either sign.
func (c CashFlowStatement) FreeCashFlow() float64 {
	return c.NetCashFromOperations - math.Abs(c.CapitalExpenditures)
}

// FinancialStatement is one reporting period of a company
type FinancialStatement struct {
	Period            string            `json:"period" validate:"required"`
	Year              int               `json:"year" validate:"min=1900,max=2200"`
	CompanyName       string            `json:"companyName"`
	BalanceSheet      BalanceSheet      `json:"balanceSheet"`
	IncomeStatement   IncomeStatement   `json:"incomeStatement"`
	CashFlowStatement CashFlowStatement `json:"cashFlowStatement"`
}

// Label returns the period identifier used on charts
func (fs FinancialStatement) Label() string {
	if fs.Period != "" {
		return fs.Period
	}
	return fmt.Sprintf("%d", fs.Year)
}

// identityTolerance is the relative gap allowed before an accounting identity is reported
const identityTolerance = 0.005

// Validate reports accounting identities that do not hold.
// The engine never rejects a statement because of these; they are surfaced as report warnings.
func (fs FinancialStatement) Validate() []string {
	var warnings []string
	bs := fs.BalanceSheet
	is := fs.IncomeStatement
	cf := fs.CashFlowStatement

	check := func(name string, left, right float64) {
		scale := math.Max(math.Abs(left), math.Abs(right))
		if scale == 0 {
			return
		}
		if math.Abs(left-right)/scale > identityTolerance {
			warnings = append(warnings, fmt.Sprintf("%s: %s does not balance (%.2f vs %.2f)", fs.Label(), name, left, right))
		}
	}

	check("total assets = current + non-current assets", bs.TotalAssets, bs.TotalCurrentAssets+bs.TotalNonCurrentAssets)
	check("total liabilities + equity = total assets", bs.TotalLiabilities+bs.TotalEquity, bs.TotalAssets)
	check("gross profit = revenue - cost of goods sold", is.GrossProfit, is.Revenue-is.CostOfGoodsSold)
	check("operating income = gross profit - operating expenses", is.OperatingIncome, is.GrossProfit-is.TotalOperatingExpenses)
	check("net cash flow = operations + investing + financing", cf.NetCashFlow, cf.NetCashFromOperations+cf.NetCashFromInvesting+cf.NetCashFromFinancing)

	return warnings
}
