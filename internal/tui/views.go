package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// renderHome renders the unauthenticated landing view
func (m Model) renderHome() string {
	var b strings.Builder

	title := m.styles.Title.Render("🚚 Fleety")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.styles.Subtitle.Render("Manage your fleet's organisations from the terminal"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Muted.Render("Sign in or create an account to reach the dashboard."))
	b.WriteString("\n")

	b.WriteString(m.helpLine(
		m.styles.Key.Render("l")+" login",
		m.styles.Key.Render("r")+" register",
		m.styles.Key.Render("q")+" quit",
	))

	return b.String()
}

// renderLogin renders the login form
func (m Model) renderLogin() string {
	var b strings.Builder

	title := m.styles.Title.Render("🔐 Sign In")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderForm([]string{"Username", "Password"}, m.loginInputs))

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.spin.View() + " Signing in..."))
		b.WriteString("\n")
	}

	if m.formError != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("✗ " + m.formError))
		b.WriteString("\n")
	}

	b.WriteString(m.helpLine(
		m.styles.Key.Render("tab")+" next field",
		m.styles.Key.Render("enter")+" submit",
		m.styles.Key.Render("esc")+" back",
	))

	return b.String()
}

// renderRegister renders the account creation form
func (m Model) renderRegister() string {
	var b strings.Builder

	title := m.styles.Title.Render("📝 Create Account")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderForm([]string{"Username", "Email", "Password"}, m.registerInputs))

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.spin.View() + " Creating account..."))
		b.WriteString("\n")
	}

	if m.formError != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("✗ " + m.formError))
		b.WriteString("\n")
	}

	b.WriteString(m.helpLine(
		m.styles.Key.Render("tab")+" next field",
		m.styles.Key.Render("enter")+" submit",
		m.styles.Key.Render("esc")+" back",
	))

	return b.String()
}

// renderForm renders labelled inputs inside a bordered box
func (m Model) renderForm(labels []string, inputs []textinput.Model) string {
	var b strings.Builder

	for i, input := range inputs {
		label := m.styles.Muted.Render(labels[i])
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(input.View())
		if i < len(inputs)-1 {
			b.WriteString("\n\n")
		}
	}

	return m.styles.Border.Render(b.String())
}

// renderDashboard renders the organisation selector
func (m Model) renderDashboard() string {
	var b strings.Builder

	title := m.styles.Title.Render("📊 Dashboard")
	b.WriteString(title)
	b.WriteString("\n")

	if user := m.ctrl.Sessions().User(); user != nil {
		b.WriteString(m.styles.Subtitle.Render("Signed in as " + user.Username))
		b.WriteString("\n")
	}

	b.WriteString(m.renderScopeLine())
	b.WriteString("\n\n")

	b.WriteString(m.renderOrgList())

	if m.membershipErr != "" {
		b.WriteString("\n")
		errorBox := m.styles.Border.
			BorderForeground(lipgloss.Color("196")). // Red border
			Render(m.styles.Error.Render("❌ ") + m.membershipErr)
		b.WriteString(errorBox)
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(m.notice))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.spin.View() + " Working..."))
		b.WriteString("\n")
	}

	helpItems := []string{
		m.styles.Key.Render("↑/↓") + " move",
		m.styles.Key.Render("enter") + " select",
		m.styles.Key.Render("g") + " global",
		m.styles.Key.Render("r") + " refresh",
	}
	if m.ctrl.CanManageOrg() {
		helpItems = append(helpItems, m.styles.Key.Render("m")+" manage")
	}
	helpItems = append(helpItems,
		m.styles.Key.Render("l")+" logout",
		m.styles.Key.Render("q")+" quit",
	)
	b.WriteString(m.helpLine(helpItems...))

	return b.String()
}

// renderScopeLine summarizes the active scope
func (m Model) renderScopeLine() string {
	active := m.ctrl.ActiveScope()
	if membership, ok := active.Membership(); ok {
		label := "Scope: " + membership.Organisation.Name
		if membership.IsOrgAdmin {
			label += " (admin)"
		}
		return m.styles.Status.Render(label)
	}
	return m.styles.Status.Render("Scope: Global")
}

// renderOrgList renders the selectable organisations with the cursor
func (m Model) renderOrgList() string {
	var b strings.Builder

	active := m.ctrl.ActiveScope()

	b.WriteString(m.renderOrgLine(0, "Global", "all organisations", active.IsGlobal()))
	b.WriteString("\n")

	if len(m.memberships) == 0 {
		b.WriteString(m.styles.Muted.Render("  You are not a member of any organisation yet"))
		b.WriteString("\n")
		return b.String()
	}

	for i, membership := range m.memberships {
		detail := fmt.Sprintf("%d members", membership.Organisation.MemberCount)
		if membership.IsOrgAdmin {
			detail += ", admin"
		}
		selected := !active.IsGlobal() && active.OrgID() == membership.Organisation.ID
		b.WriteString(m.renderOrgLine(i+1, membership.Organisation.Name, detail, selected))
		b.WriteString("\n")
	}

	return b.String()
}

// renderOrgLine renders one selector row
func (m Model) renderOrgLine(index int, name, detail string, selected bool) string {
	icon := "○"
	style := m.styles.Muted
	if selected {
		icon = "●"
		style = m.styles.Success
	}

	line := fmt.Sprintf("%s %s", style.Render(icon), name)
	if detail != "" {
		line += " " + m.styles.Muted.Render("("+detail+")")
	}

	if index == m.cursor {
		return m.styles.Highlighted.Render(line)
	}
	return "  " + line
}

// renderManage renders the roster management overlay
func (m Model) renderManage() string {
	var b strings.Builder

	active := m.ctrl.ActiveScope()
	name := "organisation"
	if membership, ok := active.Membership(); ok {
		name = membership.Organisation.Name
	}

	title := m.styles.Title.Render("👥 Manage " + name)
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.mode == manageSearch || m.searchInput.Value() != "" {
		b.WriteString(m.styles.Muted.Render("Filter"))
		b.WriteString("\n")
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}

	if m.mode == manageAdd {
		b.WriteString(m.styles.Muted.Render("Add member"))
		b.WriteString("\n")
		b.WriteString(m.addInput.View())
		b.WriteString("\n")
		role := "member"
		if m.addAdmin {
			role = "admin"
		}
		b.WriteString(m.styles.Muted.Render("Role: ") + m.styles.Status.Render(role))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderRoster())

	if m.mode == manageConfirm {
		confirmBox := m.styles.Border.
			BorderForeground(lipgloss.Color("226")). // Yellow border
			Render(m.styles.Warning.Render("Remove "+m.pending.Username+" from this organisation?") +
				"\n" + m.styles.Muted.Render("y confirm • n cancel"))
		b.WriteString("\n")
		b.WriteString(confirmBox)
		b.WriteString("\n")
	}

	if m.manageError != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("✗ " + m.manageError))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.spin.View() + " Working..."))
		b.WriteString("\n")
	}

	b.WriteString(m.helpLine(
		m.styles.Key.Render("↑/↓")+" move",
		m.styles.Key.Render("/")+" filter",
		m.styles.Key.Render("a")+" add",
		m.styles.Key.Render("t")+" toggle admin",
		m.styles.Key.Render("d")+" remove",
		m.styles.Key.Render("r")+" refresh",
		m.styles.Key.Render("esc")+" close",
	))

	return b.String()
}

// renderRoster renders the filtered member list
func (m Model) renderRoster() string {
	var b strings.Builder

	visible := m.visibleRoster()
	if len(visible) == 0 {
		if m.searchInput.Value() != "" {
			b.WriteString(m.styles.Muted.Render("No members match the filter"))
		} else {
			b.WriteString(m.styles.Muted.Render("No members yet"))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, member := range visible {
		var line strings.Builder
		line.WriteString(member.User.Username)
		line.WriteString(" ")
		line.WriteString(m.styles.Muted.Render("<" + member.User.Email + ">"))
		if member.IsOrgAdmin {
			line.WriteString(" " + m.styles.Success.Render("admin"))
		}
		if m.isSelf(member) {
			line.WriteString(" " + m.styles.Muted.Render("(you)"))
		}

		if i == m.rosterCursor && m.mode != manageAdd {
			b.WriteString(m.styles.Highlighted.Render("▸ " + line.String()))
		} else {
			b.WriteString("  " + line.String())
		}
		b.WriteString("\n")
	}

	return b.String()
}

// helpLine joins key hints in the footer style
func (m Model) helpLine(items ...string) string {
	return m.styles.Help.Render(strings.Join(items, " • "))
}
