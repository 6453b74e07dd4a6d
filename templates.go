package main

import (
	"net/http"
	"text/template"
)

// HTML template for the API homepage
const homepageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Gaffer API</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            color: #1a202c;
            background: linear-gradient(135deg, #134e4a 0%, #065f46 100%);
            min-height: 100vh;
            padding: 2rem;
        }
        .container { max-width: 900px; margin: 0 auto; }
        h1 { color: #fff; margin-bottom: 0.25rem; }
        .subtitle { color: #a7f3d0; margin-bottom: 2rem; }
        .card {
            background: #fff;
            border-radius: 8px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
        }
        .card h2 { font-size: 1.1rem; margin-bottom: 0.75rem; }
        .endpoint { padding: 0.35rem 0; font-size: 0.92rem; }
        .method {
            display: inline-block;
            width: 3.5rem;
            font-weight: 600;
            color: #047857;
        }
        .method.post { color: #b45309; }
        code { background: #f1f5f9; padding: 0.1rem 0.35rem; border-radius: 4px; }
        .footer { color: #a7f3d0; font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Gaffer API</h1>
        <p class="subtitle">Season simulation and transfer market core &mdash; v{{.Version}} &mdash; season {{.Season}}</p>

        <div class="card">
            <h2>Season</h2>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/seasons/current</code> current date, completion flag, window state</div>
            <div class="endpoint"><span class="method post">POST</span> <code>/api/v1/seasons/rollover</code> start the next season (only once complete)</div>
            <div class="endpoint"><span class="method post">POST</span> <code>/api/v1/matches/result</code> submit the user club's match result</div>
            <div class="endpoint"><span class="method post">POST</span> <code>/api/v1/matches/simulate?count=N</code> simulate forward N matchdays</div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/matches/history</code> recent results (bounded)</div>
        </div>

        <div class="card">
            <h2>Competitions &amp; fixtures</h2>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/competitions</code></div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/competitions/{id}/table</code> league standings</div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/competitions/{id}/fixtures</code></div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/fixtures?matchday=1&amp;status=SCHEDULED</code></div>
        </div>

        <div class="card">
            <h2>Clubs &amp; players</h2>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/clubs</code>, <code>/api/v1/clubs/{id}</code>, <code>/api/v1/clubs/{id}/squad</code></div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/players?club_id=&amp;transfer_status=</code>, <code>/api/v1/players/{id}</code></div>
        </div>

        <div class="card">
            <h2>Transfer market</h2>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/transfers</code> completed transfers</div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/transfers/offers</code> pending offers for your players</div>
            <div class="endpoint"><span class="method post">POST</span> <code>/api/v1/transfers/offers</code> bid for a player: <code>{"player_id": 7, "amount": 12000000}</code></div>
            <div class="endpoint"><span class="method post">POST</span> <code>/api/v1/transfers/offers/{id}/accept</code> / <code>.../reject</code></div>
        </div>

        <div class="card">
            <h2>Feed &amp; diagnostics</h2>
            <div class="endpoint"><span class="method">GET</span> <code>/ws</code> websocket feed of news and results</div>
            <div class="endpoint"><span class="method">GET</span> <code>/api/v1/news</code>, <code>/api/v1/logs</code>, <code>/api/v1/warnings</code>, <code>/api/v1/stats</code>, <code>/api/v1/health</code></div>
        </div>

        <p class="footer">All simulation state lives in one save; snapshots are written in the background.</p>
    </div>
</body>
</html>`

var homepage = template.Must(template.New("homepage").Parse(homepageTemplate))

func (s *apiServer) serveHomepage(w http.ResponseWriter, r *http.Request) {
	status := s.world.CurrentSeasonStatus()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	homepage.Execute(w, map[string]string{
		"Version": s.version,
		"Season":  status.Season,
	})
}
