package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type statusResponse struct {
	IP      string        `json:"ip"`
	Device  deviceStatus  `json:"device"`
	Network networkStatus `json:"network"`
	Sockets int           `json:"sockets"`
	Pollers int           `json:"pollers"`
}

type deviceStatus struct {
	SIM          string `json:"sim"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Version      string `json:"version"`
	IMEI         string `json:"imei"`
	IMSI         string `json:"imsi"`
	CCID         string `json:"ccid"`
}

type networkStatus struct {
	CSD      string `json:"csd"`
	PSD      string `json:"psd"`
	RSSI     int    `json:"rssi"`
	Operator string `json:"operator"`
}

func newStatusResponse(gw Gateway) statusResponse {
	dev, ns, stats := gw.DeviceStatus(), gw.NetworkStatus(), gw.Stats()
	return statusResponse{
		IP: gw.IPAddress(),
		Device: deviceStatus{
			SIM:          dev.Sim.String(),
			Manufacturer: dev.Manufacturer,
			Model:        dev.Model,
			Version:      dev.Version,
			IMEI:         dev.IMEI,
			IMSI:         dev.IMSI,
			CCID:         dev.CCID,
		},
		Network: networkStatus{
			CSD:      ns.CSD.String(),
			PSD:      ns.PSD.String(),
			RSSI:     ns.RSSI,
			Operator: ns.Operator,
		},
		Sockets: stats.Sockets,
		Pollers: stats.Pollers,
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	keyStyle   = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("8"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderStatus formats a status for the terminal.
func renderStatus(s statusResponse) string {
	section := func(title string, rows ...[2]string) string {
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r[0]), r[1]))
		}
		return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), boxStyle.Render(strings.Join(lines, "\n")))
	}

	ip := s.IP
	if ip == "" {
		ip = "none"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		section("Device",
			[2]string{"SIM", s.Device.SIM},
			[2]string{"Manufacturer", s.Device.Manufacturer},
			[2]string{"Model", s.Device.Model},
			[2]string{"Firmware", s.Device.Version},
			[2]string{"IMEI", s.Device.IMEI},
			[2]string{"IMSI", s.Device.IMSI},
			[2]string{"CCID", s.Device.CCID},
		),
		section("Network",
			[2]string{"CSD", s.Network.CSD},
			[2]string{"PSD", s.Network.PSD},
			[2]string{"RSSI", fmt.Sprintf("%d dBm", s.Network.RSSI)},
			[2]string{"Operator", s.Network.Operator},
			[2]string{"IP", ip},
		),
	)
}
