package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#C8102E")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(44)
)

const (
	viewLogin    = "login"
	viewMain     = "main"
	viewRegister = "register"
	viewOrders   = "orders"
)

// Model defines the application state
type Model struct {
	email      textinput.Model
	password   textinput.Model
	mainMenu   list.Model
	orderTable table.Model
	command    textinput.Model
	spinner    spinner.Model
	client     *ApiClient

	menu    []MenuItem
	session *SessionState
	cashier string

	loading     bool
	currentView string
	status      string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	email := textinput.New()
	email.Placeholder = "cashier@pandapos.local"
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	items := []list.Item{
		item{title: "Ring Up Order", desc: "Start a new order and key in commands"},
		item{title: "Recent Orders", desc: "View the latest orders"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 60, 14)
	mainMenu.Title = "PandaPOS Cashier"

	columns := []table.Column{
		{Title: "Order", Width: 8},
		{Title: "Source", Width: 10},
		{Title: "Lines", Width: 6},
		{Title: "Total", Width: 10},
		{Title: "Placed", Width: 20},
	}
	orderTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	command := textinput.New()
	command.Placeholder = "create a plate, add orange chicken and chow mein, checkout..."
	command.CharLimit = 156
	command.Width = 60

	return Model{
		email:       email,
		password:    password,
		mainMenu:    mainMenu,
		orderTable:  orderTable,
		command:     command,
		spinner:     s,
		client:      NewApiClient(),
		currentView: viewLogin,
	}
}

// Custom message types for the tea.Model
type loggedInMsg struct {
	email string
	menu  []MenuItem
}

type sessionMsg struct {
	state *SessionState
}

type commandMsg struct {
	result *VoiceResult
}

type ordersMsg struct {
	orders []Order
}

type errorMsg struct {
	err   string
	state *SessionState
}

func failure(prefix string, err error) errorMsg {
	msg := errorMsg{err: fmt.Sprintf("%s: %v", prefix, err)}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg = errorMsg{err: apiErr.Message, state: apiErr.State}
	}
	return msg
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()
		case "esc":
			switch m.currentView {
			case viewRegister:
				m.currentView = viewMain
				return m, m.discardSession()
			case viewOrders:
				m.currentView = viewMain
				return m, nil
			}
		case "tab":
			if m.currentView == viewLogin {
				if m.email.Focused() {
					m.email.Blur()
					m.password.Focus()
				} else {
					m.password.Blur()
					m.email.Focus()
				}
				return m, nil
			}
		case "enter":
			return m.submit()
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loggedInMsg:
		m.loading = false
		m.cashier = msg.email
		m.menu = msg.menu
		m.error = ""
		m.currentView = viewMain
		return m, nil
	case sessionMsg:
		m.loading = false
		m.session = msg.state
		m.status = "New order started"
		m.error = ""
		m.command.SetValue("")
		m.command.Focus()
		return m, nil
	case commandMsg:
		m.loading = false
		m.session = &msg.result.State
		m.error = ""
		m.status = "ok: " + msg.result.Command.Action
		if msg.result.Command.Action == "checkout" && msg.result.State.LastOrder != nil {
			o := msg.result.State.LastOrder
			m.status = fmt.Sprintf("Order #%d placed, total $%.2f", o.ID, o.Total)
		}
		m.command.SetValue("")
		return m, nil
	case ordersMsg:
		m.loading = false
		m.orderTable.SetRows(orderRows(msg.orders))
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		m.status = ""
		if msg.state != nil {
			m.session = msg.state
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case viewLogin:
		var c1, c2 tea.Cmd
		m.email, c1 = m.email.Update(msg)
		m.password, c2 = m.password.Update(msg)
		cmd = tea.Batch(c1, c2)
	case viewMain:
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case viewRegister:
		m.command, cmd = m.command.Update(msg)
	case viewOrders:
		m.orderTable, cmd = m.orderTable.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.currentView {
	case viewLogin:
		if m.email.Focused() {
			m.email.Blur()
			m.password.Focus()
			return m, nil
		}
		m.loading = true
		return m, login(m.client, strings.TrimSpace(m.email.Value()), m.password.Value())
	case viewMain:
		selected, ok := m.mainMenu.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		switch selected.title {
		case "Exit":
			return m, tea.Quit
		case "Ring Up Order":
			m.currentView = viewRegister
			m.loading = true
			return m, openSession(m.client)
		case "Recent Orders":
			m.currentView = viewOrders
			m.loading = true
			return m, fetchOrders(m.client)
		}
	case viewRegister:
		text := strings.TrimSpace(m.command.Value())
		if text == "" || m.session == nil {
			return m, nil
		}
		m.loading = true
		return m, sendCommand(m.client, m.session.ID, text)
	}
	return m, nil
}

func (m Model) discardSession() tea.Cmd {
	if m.session == nil {
		return nil
	}
	id := m.session.ID
	client := m.client
	return func() tea.Msg {
		_ = client.CloseSession(id)
		return nil
	}
}

func (m Model) quit() tea.Cmd {
	if m.session != nil {
		_ = m.client.CloseSession(m.session.ID)
	}
	return tea.Quit
}

// View renders the UI
func (m Model) View() string {
	var body string
	switch m.currentView {
	case viewLogin:
		body = titleStyle.Render("PandaPOS Login") + "\n\n" +
			m.email.View() + "\n" + m.password.View() + "\n\n" +
			"tab to switch fields, enter to log in, ctrl+c to quit\n"
	case viewMain:
		body = m.mainMenu.View() + "\n" + infoStyle.Render("Logged in as "+m.cashier) + "\n"
	case viewRegister:
		body = titleStyle.Render("Register") + "\n\n" +
			lipgloss.JoinHorizontal(lipgloss.Top,
				panelStyle.Render(menuView(m.menu)),
				panelStyle.Render(sessionView(m.session)),
			) + "\n\n" + m.command.View() + "\n" +
			"enter to send, esc to discard the order and go back\n"
	case viewOrders:
		body = titleStyle.Render("Recent Orders") + "\n\n" + m.orderTable.View() + "\n" +
			"esc to go back\n"
	default:
		body = "Loading..."
	}

	if m.loading {
		body += m.spinner.View() + " working...\n"
	}
	if m.status != "" {
		body += successStyle.Render(m.status) + "\n"
	}
	if m.error != "" {
		body += errorStyle.Render(m.error) + "\n"
	}
	return docStyle.Render(body)
}

var categoryOrder = []string{"entree", "side", "appetizer", "drink", "other"}

// menuView lists the menu grouped by category
func menuView(menu []MenuItem) string {
	grouped := make(map[string][]MenuItem)
	for _, mi := range menu {
		grouped[mi.Category] = append(grouped[mi.Category], mi)
	}

	var b strings.Builder
	b.WriteString("Menu\n")
	for _, category := range categoryOrder {
		items := grouped[category]
		if len(items) == 0 {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(category))
		for _, mi := range items {
			name := mi.Name
			if mi.Premium {
				name += " *"
			}
			fmt.Fprintf(&b, "  %-28s $%5.2f\n", name, mi.Price)
		}
	}
	return b.String()
}

// sessionView shows the order being rung up
func sessionView(st *SessionState) string {
	if st == nil {
		return "Opening order..."
	}

	var b strings.Builder
	b.WriteString("Current order\n\n")
	if len(st.Lines) == 0 {
		b.WriteString("No items added yet\n")
	}
	for i, line := range st.Lines {
		fmt.Fprintf(&b, "%d. %s x%d  $%.2f\n", i+1, line.Name, line.Quantity, line.UnitPrice*float64(line.Quantity))
		if len(line.Components) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(line.Components, ", "))
		}
	}

	if st.Meal != nil {
		fmt.Fprintf(&b, "\nBuilding %s (%.0f%%)\n", st.Meal.Name, st.Meal.Progress*100)
		if len(st.Meal.Remaining) > 0 {
			fmt.Fprintf(&b, "   still need: %s\n", strings.Join(st.Meal.Remaining, ", "))
		}
	}

	if st.PromoCode != "" {
		fmt.Fprintf(&b, "\nPromo: %s\n", st.PromoCode)
	}
	fmt.Fprintf(&b, "\nSubtotal  $%.2f\n", st.Totals.Subtotal)
	if st.Totals.Discount > 0 {
		fmt.Fprintf(&b, "Discount -$%.2f\n", st.Totals.Discount)
	}
	fmt.Fprintf(&b, "Tax       $%.2f\n", st.Totals.Tax)
	fmt.Fprintf(&b, "Total     $%.2f\n", st.Totals.Total)
	return b.String()
}

func orderRows(orders []Order) []table.Row {
	rows := make([]table.Row, len(orders))
	for i, o := range orders {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", o.ID),
			o.Source,
			fmt.Sprintf("%d", len(o.Items)),
			fmt.Sprintf("$%.2f", o.Total),
			o.CreatedAt.Local().Format("Jan 2 15:04:05"),
		}
	}
	return rows
}

func login(client *ApiClient, email, password string) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.Login(email, password); err != nil {
			return failure("Login failed", err)
		}
		menu, err := client.GetMenu()
		if err != nil {
			return failure("Error fetching menu", err)
		}
		return loggedInMsg{email: email, menu: menu}
	}
}

func openSession(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		st, err := client.OpenSession()
		if err != nil {
			return failure("Error opening order", err)
		}
		return sessionMsg{state: st}
	}
}

func sendCommand(client *ApiClient, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		res, err := client.Command(sessionID, text)
		if err != nil {
			return failure("Command failed", err)
		}
		return commandMsg{result: res}
	}
}

// fetchOrders retrieves orders from the API
func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders(25)
		if err != nil {
			return failure("Error fetching orders", err)
		}
		return ordersMsg{orders: orders}
	}
}

func main() {
	client := NewApiClient()
	if err := client.CheckHealth(); err != nil {
		fmt.Printf("API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	model := initialModel()
	model.client = client

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
