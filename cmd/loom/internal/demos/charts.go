package demos

import (
	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/theme"
)

func init() {
	register(Demo{
		Name:  "dashboard",
		Short: "bar and line charts side by side",
		Build: buildDashboard,
	})
	register(Demo{
		Name:  "mainframe",
		Short: "cyberpunk theme with an input and a line chart",
		Options: []loom.Option{
			loom.WithTitle("Mainframe"),
			loom.WithTheme(theme.Cyberpunk()),
		},
		Build: buildMainframe,
	})
}

func buildDashboard(app *loom.App) {
	s := app.State()
	s.Set("revenue", []int{12000, 19000, 3000, 5000})
	s.Set("growth", []int{10, 25, 40, 35})

	app.Text("Quarterly Sales Dashboard")
	app.Row(func() {
		app.Column(func() {
			app.Text("Revenue (Bar)")
			app.Chart("revenue", core.WithLabels("Q1", "Q2", "Q3", "Q4"))
		})
		app.Column(func() {
			app.Text("Growth (Line)")
			app.Chart("growth", core.WithChartType("line"), core.WithLabels("Jan", "Feb", "Mar", "Apr"))
		})
	})
}

func buildMainframe(app *loom.App) {
	s := app.State()
	s.Set("access_code", "")
	s.Set("protocol", "IDLE")
	s.Set("server_load", []int{12, 45, 89, 23})

	app.Text("# SYSTEM STATUS: ONLINE")
	app.Text("Welcome to the mainframe.")

	app.Row(func() {
		app.Button("INITIATE PROTOCOL", func() { s.Set("protocol", "Hacking...") })
		app.Input("access_code", core.WithLabel("Enter Access Code"), core.WithInputType("password"))
	})
	app.Text("Protocol: $protocol")

	app.Text("# SERVER LOAD")
	app.Chart("server_load",
		core.WithChartType("line"),
		core.WithLabels("00:00", "00:01", "00:02", "00:03"),
	)
}
