package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/status"
	"github.com/mdp/qrterminal/v3"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.header.Render(bridgemanager.VersionString()))
	b.WriteString("\n")

	switch m.screen {
	case screenLogin:
		b.WriteString(m.loginView())
	case screenStarting:
		b.WriteString(m.startingView())
	default:
		b.WriteString(m.bridgesView())
	}

	return m.theme.root.Render(b.String())
}

func (m Model) errorLine(err error) string {
	if err == nil {
		return ""
	}

	return m.theme.errorText.Render(err.Error()) + "\n"
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(m.theme.title.Render("Sign in to the bridge manager"))
	b.WriteString("\n")
	b.WriteString(m.userInput.View())
	b.WriteString("\n")
	b.WriteString(m.passInput.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " Signing in...\n")
	} else {
		b.WriteString(m.theme.button.Render("Sign in") + "\n")
	}

	b.WriteString(m.errorLine(m.err))
	b.WriteString(m.theme.footer.Render("enter: sign in • tab: next field • ctrl+c: quit"))
	return b.String()
}

func (m Model) startingView() string {
	var b strings.Builder
	if m.busy {
		b.WriteString(m.spinner.View() + " Loading configuration...\n")
	} else {
		b.WriteString(m.errorLine(m.err))
	}

	b.WriteString(m.theme.footer.Render("enter: retry • ctrl+x: sign out • ctrl+c: quit"))
	return b.String()
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(m.tabs))
	for i, id := range m.tabs {
		switch {
		case i == m.active:
			tabs = append(tabs, m.theme.tabActive.Render(id.Name()))
		case m.views[id] == nil:
			tabs = append(tabs, m.theme.tabDisabled.Render(id.Name()))
		default:
			tabs = append(tabs, m.theme.tabInactive.Render(id.Name()))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) bridgesView() string {
	var b strings.Builder
	if m.sess != nil {
		b.WriteString(m.theme.muted.Render("Signed in as " + m.sess.UserId()))
		b.WriteString("\n")
	}

	b.WriteString(m.errorLine(m.err))

	if len(m.tabs) == 0 {
		b.WriteString(m.theme.panel.Render(m.theme.muted.Render("No bridges are enabled on this server.")))
		b.WriteString("\n")
		b.WriteString(m.theme.footer.Render("ctrl+x: sign out • ctrl+c: quit"))
		return b.String()
	}

	b.WriteString(m.tabsView())
	b.WriteString("\n")

	id, _ := m.activeBridge()
	view := m.views[id]
	if view == nil {
		b.WriteString(m.theme.panel.Render(m.theme.muted.Render(id.Name() + " is not supported by this client yet.")))
		b.WriteString("\n")
		b.WriteString(m.theme.footer.Render("tab: next bridge • ctrl+x: sign out • ctrl+c: quit"))
		return b.String()
	}

	snap := view.Snapshot()
	b.WriteString(m.theme.panel.Render(m.bridgePanel(snap)))
	b.WriteString("\n")
	b.WriteString(m.theme.footer.Render(m.helpLine(snap)))
	return b.String()
}

func (m Model) bridgePanel(snap status.Snapshot) string {
	var b strings.Builder
	b.WriteString(m.theme.title.Render(snap.Bridge.ServiceName()))
	b.WriteString("\n")

	switch {
	case snap.State == status.StateAbsent && snap.Loading:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case snap.State == status.StateAbsent:
		b.WriteString(m.theme.muted.Render("Bridge state unavailable") + "\n")
	case snap.State == status.StateSignedIn:
		b.WriteString(m.theme.success.Render(snap.Summary) + "\n")
		if snap.Loading {
			b.WriteString(m.spinner.View() + "\n")
		} else {
			b.WriteString("\n" + m.theme.button.Render("Sign out") + "\n")
		}
	default:
		b.WriteString(m.theme.text.Render(snap.Summary) + "\n")
		if snap.Login != nil {
			b.WriteString("\n")
			b.WriteString(m.loginPanel(snap, *snap.Login))
		} else if snap.Loading || m.busy {
			b.WriteString(m.spinner.View() + "\n")
		}
	}

	b.WriteString(m.errorLine(snap.Err))
	b.WriteString(m.errorLine(m.notice))

	if m.showInternal && len(snap.RawState) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.muted.Render("Internal bridge state"))
		b.WriteString("\n")
		b.WriteString(m.theme.raw.Render(snap.RawState))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) loginPanel(snap status.Snapshot, flow login.Snapshot) string {
	var b strings.Builder
	for _, line := range flow.Spec.Prompt {
		b.WriteString(m.theme.text.Render(line))
		b.WriteString("\n")
	}

	if len(flow.Spec.Prompt) > 0 {
		b.WriteString("\n")
	}

	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	if len(snap.Prompt) > 0 {
		b.WriteString("\n")
		b.WriteString(m.promptView(flow, snap.Prompt))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	label := submitLabel(flow)

	switch {
	case flow.Loading:
		b.WriteString(m.spinner.View() + " " + m.theme.muted.Render(label))
	case flow.CanSubmit:
		b.WriteString(m.theme.button.Render(label))
	default:
		b.WriteString(m.theme.buttonOff.Render(label))
	}

	for _, alt := range flow.Spec.Alternatives {
		b.WriteString("  " + m.theme.muted.Render("ctrl+b: "+alt.Label))
	}

	b.WriteString("\n")
	b.WriteString(m.errorLine(flow.Err))
	return b.String()
}

func (m Model) promptView(flow login.Snapshot, prompt string) string {
	if !flow.Spec.QR {
		return m.theme.text.Render("Open this link to continue:") + "\n" + prompt
	}

	var qr strings.Builder
	qrterminal.GenerateHalfBlock(prompt, qrterminal.L, &qr)
	return m.theme.text.Render("Scan this code with the app on your phone:") + "\n" + qr.String()
}

func (m Model) helpLine(snap status.Snapshot) string {
	keys := []string{"tab: next bridge"}

	switch {
	case snap.State == status.StateSignedIn:
		keys = append(keys, "ctrl+o: sign out of "+snap.Bridge.Name())
	case snap.Login != nil:
		keys = append(keys, "enter: "+strings.ToLower(submitLabel(*snap.Login)))
		if len(m.inputs) > 1 {
			keys = append(keys, "↑/↓: field")
		}
	}

	keys = append(keys, "ctrl+r: refresh")
	if m.cfg.InternalBridgeInfo() {
		keys = append(keys, fmt.Sprintf("ctrl+t: %s internal state", onOff(!m.showInternal)))
	}

	keys = append(keys, "ctrl+x: sign out", "ctrl+c: quit")
	return strings.Join(keys, " • ")
}

func submitLabel(flow login.Snapshot) string {
	if len(flow.Spec.SubmitLabel) == 0 {
		return "Submit"
	}

	return flow.Spec.SubmitLabel
}

func onOff(show bool) string {
	if show {
		return "show"
	}

	return "hide"
}
