package core

// Dashboard is the payload for the home page.
type Dashboard struct {
	Tasks         []Task
	Expenses      []Expense
	Items         []ShoppingItem
	Members       []Member
	TotalExpenses Money
}

// CategoryTotal is the sum of expense amounts sharing one category.
type CategoryTotal struct {
	Category string
	Total    Money
}

// Dashboard limits for the recent-records sections.
const (
	DashboardTasks    = 5
	DashboardExpenses = 5
	DashboardItems    = 6
)
