package testutil

import (
	"fmt"

	"finanalytics/pkg/contracts/domain"
)

// CompanyName is the name used by every fixture statement
const CompanyName = "Baghdad Soft Drinks"

// Company returns the fixture company in the beverages sector
func Company() domain.CompanyInfo {
	return domain.CompanyInfo{Name: CompanyName, Sector: "beverages"}
}

// Statement builds one balanced period. Monetary amounts are the latest
// period's figures scaled by g; at g = 1 current assets are 895M and current
// liabilities 325M.
func Statement(year int, g float64) domain.FinancialStatement {
	m := func(v float64) float64 { return v * 1e6 * g }
	return domain.FinancialStatement{
		Period:      fmt.Sprintf("FY%d", year),
		Year:        year,
		CompanyName: CompanyName,
		BalanceSheet: domain.BalanceSheet{
			Cash:                       m(200),
			ShortTermInvestments:       m(50),
			AccountsReceivable:         m(300),
			Inventory:                  m(250),
			PrepaidExpenses:            m(45),
			OtherCurrentAssets:         m(50),
			TotalCurrentAssets:         m(895),
			PropertyPlantEquipment:     m(900),
			IntangibleAssets:           m(100),
			Goodwill:                   m(80),
			LongTermInvestments:        m(120),
			OtherNonCurrentAssets:      m(5),
			TotalNonCurrentAssets:      m(1205),
			TotalAssets:                m(2100),
			AccountsPayable:            m(150),
			ShortTermDebt:              m(60),
			CurrentPortionLongTermDebt: m(40),
			AccruedLiabilities:         m(50),
			OtherCurrentLiabilities:    m(25),
			TotalCurrentLiabilities:    m(325),
			LongTermDebt:               m(500),
			DeferredTaxLiabilities:     m(40),
			OtherNonCurrentLiabilities: m(35),
			TotalNonCurrentLiabilities: m(575),
			TotalLiabilities:           m(900),
			ShareCapital:               m(500),
			RetainedEarnings:           m(600),
			OtherEquity:                m(100),
			TotalEquity:                m(1200),
		},
		IncomeStatement: domain.IncomeStatement{
			Revenue:                  m(1800),
			CostOfGoodsSold:          m(1080),
			GrossProfit:              m(720),
			SellingGeneralAdmin:      m(250),
			ResearchDevelopment:      m(40),
			DepreciationAmortization: m(90),
			OtherOperatingExpenses:   m(20),
			TotalOperatingExpenses:   m(400),
			OperatingIncome:          m(320),
			InterestExpense:          m(35),
			InterestIncome:           m(5),
			IncomeBeforeTax:          m(290),
			IncomeTaxExpense:         m(58),
			NetIncome:                m(232),
			EarningsPerShare:         2.32 * g,
			DividendsPerShare:        1.0 * g,
			SharesOutstanding:        100e6,
			SharePrice:               30 * g,
		},
		CashFlowStatement: domain.CashFlowStatement{
			NetIncome:                m(232),
			DepreciationAmortization: m(90),
			ChangeInWorkingCapital:   m(-30),
			OtherOperatingActivities: m(8),
			NetCashFromOperations:    m(300),
			CapitalExpenditures:      m(-120),
			Acquisitions:             m(-20),
			OtherInvestingActivities: m(10),
			NetCashFromInvesting:     m(-130),
			DebtIssued:               m(50),
			DebtRepaid:               m(-60),
			DividendsPaid:            m(-100),
			ShareRepurchases:         m(-10),
			NetCashFromFinancing:     m(-120),
			NetCashFlow:              m(50),
			BeginningCash:            m(150),
			EndingCash:               m(200),
		},
	}
}

// Statements returns four growing periods, oldest first
func Statements() []domain.FinancialStatement {
	return []domain.FinancialStatement{
		Statement(2021, 0.70),
		Statement(2022, 0.78),
		Statement(2023, 0.91),
		Statement(2024, 1.00),
	}
}
