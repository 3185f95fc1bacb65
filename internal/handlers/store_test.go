package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// memStore is an in-memory Store that keeps rows per owner and returns the
// same sentinel errors as the Postgres repositories
type memStore struct {
	nextID       int
	users        map[int]*models.User
	categories   map[int]*models.Category
	transactions map[int]*models.Transaction
	expenses     []*models.Expense
	recurring    map[int]*models.RecurringExpense
	goals        map[int]*models.Goal
	prefs        map[int]map[string]string
	billKeys     map[int][]string

	calls      []string
	lastParams *models.TransactionListParams
	lastFilter *models.ExpenseFilter
	spentFrom  time.Time
	spentTo    time.Time
	sumWindows [][2]time.Time
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		nextID:       100,
		users:        map[int]*models.User{},
		categories:   map[int]*models.Category{},
		transactions: map[int]*models.Transaction{},
		recurring:    map[int]*models.RecurringExpense{},
		goals:        map[int]*models.Goal{},
		prefs:        map[int]map[string]string{},
		billKeys:     map[int][]string{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(id int, name, email string) *models.User {
	u := &models.User{ID: id, FullName: name, Email: email, Role: models.RoleUser, CreatedAt: testNow}
	s.users[id] = u
	return u
}

func (s *memStore) addCategory(userID int, name string, typ models.EntryType, budget float64) *models.Category {
	c := &models.Category{ID: s.id(), UserID: userID, Name: name, Type: typ, Budget: budget}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) addTransaction(userID, categoryID int, amount float64, typ models.EntryType, date time.Time) *models.Transaction {
	cat := s.categories[categoryID]
	tx := &models.Transaction{
		ID: s.id(), UserID: userID, CategoryID: categoryID, Amount: amount, Type: typ, Date: date,
		Description: "entry", Category: &models.CategoryRef{ID: cat.ID, Name: cat.Name},
	}
	s.transactions[tx.ID] = tx
	return tx
}

func inWindow(d, from, to time.Time) bool {
	return !d.Before(from) && d.Before(to)
}

// users

func (s *memStore) CreateUser(ctx context.Context, fullName, email, passwordHash string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, database.ErrEmailExists
		}
	}
	u := &models.User{ID: s.id(), FullName: fullName, Email: strings.ToLower(email), PasswordHash: passwordHash, Role: models.RoleUser}
	s.users[u.ID] = u
	return u, nil
}

func (s *memStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrUserNotFound
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (s *memStore) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Age != nil {
		u.Age = req.Age
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.MonthlyBudget != nil {
		u.MonthlyBudget = *req.MonthlyBudget
	}
	return u, nil
}

func (s *memStore) UpdateParentalContact(ctx context.Context, id int, req *models.ParentalContactRequest) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	if req.ParentEmail != nil {
		u.ParentEmail = req.ParentEmail
	}
	if req.ParentPhone != nil {
		u.ParentPhone = req.ParentPhone
	}
	if req.ParentTelegramChatID != nil {
		u.ParentTelegramChatID = req.ParentTelegramChatID
	}
	return u, nil
}

func (s *memStore) UpdateUserLastLogin(ctx context.Context, id int) error {
	u, ok := s.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	at := testNow
	u.LastLoginAt = &at
	return nil
}

// DeleteUser cascades to everything the user owns, like the foreign keys do
func (s *memStore) DeleteUser(ctx context.Context, id int) error {
	s.calls = append(s.calls, "DeleteUser")
	if _, ok := s.users[id]; !ok {
		return database.ErrUserNotFound
	}
	delete(s.users, id)
	for k, c := range s.categories {
		if c.UserID == id {
			delete(s.categories, k)
		}
	}
	for k, tx := range s.transactions {
		if tx.UserID == id {
			delete(s.transactions, k)
		}
	}
	for k, g := range s.goals {
		if g.UserID == id {
			delete(s.goals, k)
		}
	}
	delete(s.billKeys, id)
	delete(s.prefs, id)
	return nil
}

func (s *memStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	list := []*models.User{}
	for _, u := range s.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	total := len(list)
	if offset >= total {
		return []*models.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return list[offset:end], total, nil
}

func (s *memStore) CountUsers(ctx context.Context) (int, error) {
	return len(s.users), nil
}

// categories

func (s *memStore) ListCategories(ctx context.Context, userID int, from, to time.Time) ([]*models.Category, error) {
	s.spentFrom, s.spentTo = from, to
	list := []*models.Category{}
	for _, c := range s.categories {
		if c.UserID != userID {
			continue
		}
		out := *c
		out.Spent = 0
		for _, tx := range s.transactions {
			if tx.CategoryID == c.ID && tx.Type == models.EntryExpense && inWindow(tx.Date, from, to) {
				out.Spent += tx.Amount
			}
		}
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *memStore) nameTaken(userID, exceptID int, name string) bool {
	for _, c := range s.categories {
		if c.UserID == userID && c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *memStore) CreateCategory(ctx context.Context, userID int, req *models.CategoryRequest) (*models.Category, error) {
	if s.nameTaken(userID, 0, req.Name) {
		return nil, database.ErrCategoryExists
	}
	c := &models.Category{ID: s.id(), UserID: userID, Name: req.Name, Type: req.Type, Color: req.Color, Icon: req.Icon}
	if req.Budget != nil {
		c.Budget = *req.Budget
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *memStore) UpdateCategory(ctx context.Context, id, userID int, req *models.CategoryRequest) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return nil, database.ErrCategoryNotFound
	}
	if s.nameTaken(userID, id, req.Name) {
		return nil, database.ErrCategoryExists
	}
	c.Name, c.Type = req.Name, req.Type
	if req.Budget != nil {
		c.Budget = *req.Budget
	}
	return c, nil
}

func (s *memStore) DeleteCategory(ctx context.Context, id, userID int) error {
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return database.ErrCategoryNotFound
	}
	for _, tx := range s.transactions {
		if tx.CategoryID == id {
			return database.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

// transactions

func (s *memStore) owned(userID int) []*models.Transaction {
	list := []*models.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			list = append(list, tx)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (s *memStore) ListTransactions(ctx context.Context, params *models.TransactionListParams) ([]*models.Transaction, int, error) {
	s.lastParams = params
	matched := []*models.Transaction{}
	for _, tx := range s.owned(params.UserID) {
		if params.CategoryID != nil && tx.CategoryID != *params.CategoryID {
			continue
		}
		if params.Type != nil && tx.Type != *params.Type {
			continue
		}
		if params.StartDate != nil && tx.Date.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && tx.Date.After(*params.EndDate) {
			continue
		}
		matched = append(matched, tx)
	}

	total := len(matched)
	if params.Offset >= total {
		return []*models.Transaction{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func (s *memStore) ListAllTransactions(ctx context.Context, userID int) ([]*models.Transaction, error) {
	return s.owned(userID), nil
}

func (s *memStore) GetTransaction(ctx context.Context, id, userID int) (*models.Transaction, error) {
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, database.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *memStore) ownCategory(id, userID int) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return nil, database.ErrCategoryNotFound
	}
	return c, nil
}

func (s *memStore) CreateTransaction(ctx context.Context, userID int, req *models.TransactionRequest) (*models.Transaction, error) {
	if _, err := s.ownCategory(req.CategoryID, userID); err != nil {
		return nil, err
	}
	tx := s.addTransaction(userID, req.CategoryID, req.Amount, req.Type, req.ParsedDate())
	tx.Description = req.Description
	return tx, nil
}

func (s *memStore) UpdateTransaction(ctx context.Context, id, userID int, req *models.TransactionRequest) (*models.Transaction, error) {
	tx, err := s.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	cat, err := s.ownCategory(req.CategoryID, userID)
	if err != nil {
		return nil, err
	}
	tx.CategoryID, tx.Category = cat.ID, &models.CategoryRef{ID: cat.ID, Name: cat.Name}
	tx.Amount, tx.Description, tx.Type, tx.Date = req.Amount, req.Description, req.Type, req.ParsedDate()
	return tx, nil
}

func (s *memStore) DeleteTransaction(ctx context.Context, id, userID int) error {
	if _, err := s.GetTransaction(ctx, id, userID); err != nil {
		return err
	}
	delete(s.transactions, id)
	return nil
}

func (s *memStore) SumTransactionsByType(ctx context.Context, userID int, from, to time.Time) (income, expense float64, err error) {
	for _, tx := range s.owned(userID) {
		if !inWindow(tx.Date, from, to) {
			continue
		}
		if tx.Type == models.EntryIncome {
			income += tx.Amount
		} else {
			expense += tx.Amount
		}
	}
	return income, expense, nil
}

func (s *memStore) ExpenseByCategory(ctx context.Context, userID int, from, to time.Time) ([]database.CategorySpend, error) {
	cats, _ := s.ListCategories(ctx, userID, from, to)
	spend := []database.CategorySpend{}
	for _, c := range cats {
		if c.Type != models.EntryExpense {
			continue
		}
		spend = append(spend, database.CategorySpend{CategoryID: c.ID, Name: c.Name, Budget: c.Budget, Spent: c.Spent})
	}
	sort.SliceStable(spend, func(i, j int) bool { return spend[i].Spent > spend[j].Spent })
	return spend, nil
}

func (s *memStore) GetTransactionTotals(ctx context.Context, from, to time.Time) (*database.TransactionTotals, error) {
	totals := &database.TransactionTotals{Count: len(s.transactions), ByCategory: map[string]float64{}}
	for _, tx := range s.transactions {
		if !inWindow(tx.Date, from, to) {
			continue
		}
		if tx.Type == models.EntryIncome {
			totals.Income += tx.Amount
		} else {
			totals.Expense += tx.Amount
			totals.ByCategory[tx.Category.Name] += tx.Amount
		}
	}
	return totals, nil
}

// expenses

func (s *memStore) CreateExpense(ctx context.Context, userID int, req *models.ExpenseRequest) (*models.Expense, error) {
	e := &models.Expense{ID: s.id(), UserID: userID, Amount: req.Amount, Category: req.Category, Date: req.ParsedDate()}
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *memStore) ListExpenses(ctx context.Context, filter *models.ExpenseFilter) ([]*models.Expense, error) {
	s.lastFilter = filter
	list := []*models.Expense{}
	for _, e := range s.expenses {
		if e.UserID != filter.UserID {
			continue
		}
		if filter.Category != nil && !strings.EqualFold(e.Category, *filter.Category) {
			continue
		}
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			continue
		}
		list = append(list, e)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (s *memStore) SumExpensesByCategory(ctx context.Context, userID int, category string, from, to time.Time) (float64, error) {
	s.sumWindows = append(s.sumWindows, [2]time.Time{from, to})
	var total float64
	for _, e := range s.expenses {
		if e.UserID == userID && strings.EqualFold(e.Category, category) && inWindow(e.Date, from, to) {
			total += e.Amount
		}
	}
	for _, tx := range s.owned(userID) {
		if tx.Type == models.EntryExpense && strings.EqualFold(tx.Category.Name, category) && inWindow(tx.Date, from, to) {
			total += tx.Amount
		}
	}
	return total, nil
}

// recurring expenses

func (s *memStore) CreateRecurringExpense(ctx context.Context, userID int, req *models.RecurringExpenseRequest) (*models.RecurringExpense, error) {
	r := &models.RecurringExpense{
		ID: s.id(), UserID: userID, Amount: req.Amount, Category: req.Category,
		Frequency: req.Frequency, NextDueDate: req.ParsedDate(),
	}
	s.recurring[r.ID] = r
	return r, nil
}

func (s *memStore) ListRecurringExpenses(ctx context.Context, userID int) ([]*models.RecurringExpense, error) {
	list := []*models.RecurringExpense{}
	for _, r := range s.recurring {
		if r.UserID == userID {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].NextDueDate.Before(list[j].NextDueDate) })
	return list, nil
}

func (s *memStore) DeleteRecurringExpense(ctx context.Context, id, userID int) error {
	r, ok := s.recurring[id]
	if !ok || r.UserID != userID {
		return database.ErrRecurringNotFound
	}
	delete(s.recurring, id)
	return nil
}

// goals

func (s *memStore) ListGoals(ctx context.Context, userID int) ([]*models.Goal, error) {
	list := []*models.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			list = append(list, g)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memStore) CreateGoal(ctx context.Context, userID int, req *models.GoalRequest) (*models.Goal, error) {
	g := &models.Goal{ID: s.id(), UserID: userID, Name: req.Name, Target: req.Target, Saved: req.SavedOrZero(), Deadline: req.ParsedDeadline()}
	g.ComputeProgress()
	s.goals[g.ID] = g
	return g, nil
}

func (s *memStore) ownGoal(id, userID int) (*models.Goal, error) {
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, database.ErrGoalNotFound
	}
	return g, nil
}

func (s *memStore) UpdateGoal(ctx context.Context, id, userID int, req *models.GoalRequest) (*models.Goal, error) {
	g, err := s.ownGoal(id, userID)
	if err != nil {
		return nil, err
	}
	g.Name, g.Target, g.Deadline = req.Name, req.Target, req.ParsedDeadline()
	if req.Saved != nil {
		g.Saved = *req.Saved
	}
	g.ComputeProgress()
	return g, nil
}

func (s *memStore) ContributeToGoal(ctx context.Context, id, userID int, amount float64) (*models.Goal, error) {
	g, err := s.ownGoal(id, userID)
	if err != nil {
		return nil, err
	}
	g.Saved += amount
	g.ComputeProgress()
	return g, nil
}

func (s *memStore) DeleteGoal(ctx context.Context, id, userID int) error {
	if _, err := s.ownGoal(id, userID); err != nil {
		return err
	}
	delete(s.goals, id)
	return nil
}

// preferences

func (s *memStore) GetPreferences(ctx context.Context, userID int) (map[string]string, error) {
	out := make(map[string]string, len(models.PreferenceDefaults))
	for k, v := range models.PreferenceDefaults {
		out[k] = v
	}
	for k, v := range s.prefs[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) SetPreferences(ctx context.Context, userID int, values map[string]string) error {
	if s.prefs[userID] == nil {
		s.prefs[userID] = map[string]string{}
	}
	for k, v := range values {
		s.prefs[userID][k] = v
	}
	return nil
}

// bill archive

func (s *memStore) ListBillScanKeys(ctx context.Context, userID int) ([]string, error) {
	s.calls = append(s.calls, "ListBillScanKeys")
	return s.billKeys[userID], nil
}

func (s *memStore) CountBillScans(ctx context.Context) (int, error) {
	n := 0
	for _, keys := range s.billKeys {
		n += len(keys)
	}
	return n, nil
}

// storeHandler returns a test handler backed by store
func storeHandler(store *memStore) *Handler {
	h := testHandler()
	h.db = store
	return h
}
