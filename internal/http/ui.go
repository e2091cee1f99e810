package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Fleet Operations Dashboard</title>
  <style>
    @import url("https://fonts.googleapis.com/css?family=Open+Sans:300,400,600,700");

    :root {
      --brand: #14532d;
      --brand-2: #16a34a;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --line-soft: #eee;
      --head: #f0f0f0;
      --ok-bg: #dff0d8;
      --ok-text: #3c763d;
      --warn-bg: #fcf8e3;
      --warn-text: #8a6d3b;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }

    * { box-sizing: border-box; }

    html { scroll-behavior: smooth; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Open Sans", "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      line-height: 1.42857143;
    }

    a { color: #428bca; text-decoration: none; }
    a:hover { color: #2a6496; text-decoration: underline; }

    header {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      border-bottom: 1px solid #0f3d22;
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }

    .container {
      margin-right: auto;
      margin-left: auto;
      padding-left: 15px;
      padding-right: 15px;
      width: 100%;
      max-width: 1680px;
    }

    .header-inner {
      min-height: 70px;
      display: flex;
      align-items: center;
      justify-content: space-between;
      gap: 16px;
    }

    .navbar-brand {
      color: #fff;
      font-size: 22px;
      font-weight: 300;
      letter-spacing: 0.2px;
    }

    .navbar-brand strong { font-weight: 600; }

    .navbar-note {
      color: rgba(255, 255, 255, 0.88);
      font-size: 13px;
      font-weight: 300;
      text-align: right;
    }

    main { padding: 18px 0 32px; }

    .tabs {
      display: flex;
      gap: 8px;
      margin-bottom: 14px;
      border-bottom: 1px solid var(--line);
      padding-bottom: 8px;
      flex-wrap: wrap;
    }

    .tab-btn {
      border: 1px solid #cfe0d4;
      background: #fff;
      color: var(--brand);
      border-radius: 4px;
      padding: 7px 12px;
      font-size: 13px;
      cursor: pointer;
    }

    .tab-btn.active {
      background: var(--brand);
      border-color: var(--brand);
      color: #fff;
    }

    .tab-panel { display: none; }
    .tab-panel.active { display: block; }

    .grid {
      display: grid;
      grid-template-columns: repeat(12, 1fr);
      gap: 14px;
    }

    .card {
      background: var(--paper);
      border: 1px solid var(--line);
      border-radius: 4px;
      box-shadow: 0 1px 2px rgba(0, 0, 0, 0.05);
    }

    .card-head {
      border-bottom: 1px solid var(--line-soft);
      padding: 10px 14px;
      display: flex;
      align-items: center;
      justify-content: space-between;
      gap: 10px;
      flex-wrap: wrap;
    }

    .card-head h2 {
      margin: 0;
      font-size: 15px;
      font-weight: 600;
    }

    .card-body { padding: 12px 14px; }

    .span-12 { grid-column: span 12; }
    .span-8 { grid-column: span 8; }
    .span-6 { grid-column: span 6; }
    .span-4 { grid-column: span 4; }
    .span-3 { grid-column: span 3; }

    @media (max-width: 1100px) {
      .span-8, .span-6, .span-4, .span-3 { grid-column: span 12; }
    }

    .kpi {
      display: flex;
      flex-direction: column;
      gap: 3px;
    }

    .kpi .label { color: var(--muted); font-size: 12px; }
    .kpi .value { font-size: 24px; font-weight: 600; }
    .kpi .sub { color: var(--muted); font-size: 12px; }

    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 13px;
    }

    th, td {
      border-bottom: 1px solid var(--line-soft);
      padding: 7px 8px;
      text-align: left;
      vertical-align: top;
    }

    th {
      background: var(--head);
      font-weight: 600;
      white-space: nowrap;
      cursor: pointer;
      user-select: none;
    }

    th.sorted::after { content: " \25BE"; }
    th.sorted.asc::after { content: " \25B4"; }

    tr:hover td { background: #fafdf9; }

    .pill {
      display: inline-block;
      border-radius: 10px;
      padding: 1px 9px;
      font-size: 12px;
      white-space: nowrap;
    }

    .pill.ok { background: var(--ok-bg); color: var(--ok-text); }
    .pill.warn { background: var(--warn-bg); color: var(--warn-text); }
    .pill.bad { background: var(--bad-bg); color: var(--bad-text); }
    .pill.muted { background: #eee; color: #555; }

    .controls {
      display: flex;
      gap: 8px;
      align-items: center;
      flex-wrap: wrap;
    }

    .controls input[type="search"], .controls input[type="month"], .controls select {
      border: 1px solid var(--line);
      border-radius: 4px;
      padding: 6px 8px;
      font-size: 13px;
      background: #fff;
    }

    .btn {
      border: 1px solid var(--line);
      background: #fff;
      border-radius: 4px;
      padding: 6px 10px;
      font-size: 13px;
      cursor: pointer;
      color: var(--text);
    }

    .btn:hover { background: #f4f4f4; }
    .btn.primary { background: var(--brand); border-color: var(--brand); color: #fff; }

    .pager {
      display: flex;
      gap: 8px;
      align-items: center;
      justify-content: flex-end;
      padding: 8px 0 0;
      color: var(--muted);
      font-size: 12px;
    }

    .mono { font-family: Menlo, Consolas, monospace; font-size: 12px; }
    .muted { color: var(--muted); }
    .empty { color: var(--muted); padding: 14px 6px; text-align: center; }

    .bars {
      display: flex;
      align-items: flex-end;
      gap: 5px;
      height: 140px;
      padding: 4px 0;
    }

    .bars .bar {
      flex: 1;
      background: var(--brand-2);
      border-radius: 2px 2px 0 0;
      min-height: 2px;
      position: relative;
    }

    .bars .bar span {
      position: absolute;
      bottom: -18px;
      left: 0;
      right: 0;
      text-align: center;
      font-size: 10px;
      color: var(--muted);
      white-space: nowrap;
      overflow: hidden;
    }

    footer {
      border-top: 1px solid var(--line);
      color: var(--muted);
      font-size: 12px;
      padding: 12px 0 22px;
    }
  </style>
</head>
<body>
  <header>
    <div class="container header-inner">
      <div class="navbar-brand">Fleet <strong>Operations</strong></div>
      <div class="navbar-note">
        tanks, driver safety, maintenance and deliveries<br />
        <span id="generated-at" class="mono">loading...</span>
      </div>
    </div>
  </header>

  <main class="container">
    <div class="tabs">
      <button class="tab-btn active" data-tab="tanks">Tanks</button>
      <button class="tab-btn" data-tab="drivers">Drivers</button>
      <button class="tab-btn" data-tab="maintenance">Maintenance</button>
      <button class="tab-btn" data-tab="deliveries">Deliveries</button>
      <button class="tab-btn" data-tab="reports">Reports</button>
      <button class="tab-btn" data-tab="services">Services</button>
    </div>

    <section id="tab-tanks" class="tab-panel active">
      <div class="grid">
        <div class="card span-3"><div class="card-body kpi">
          <span class="label">Tanks tracked</span>
          <span class="value" id="kpi-tanks-total">-</span>
        </div></div>
        <div class="card span-3"><div class="card-body kpi">
          <span class="label">Critical</span>
          <span class="value" id="kpi-tanks-critical">-</span>
          <span class="sub">below critical threshold</span>
        </div></div>
        <div class="card span-3"><div class="card-body kpi">
          <span class="label">Low</span>
          <span class="value" id="kpi-tanks-low">-</span>
        </div></div>
        <div class="card span-3"><div class="card-body kpi">
          <span class="label">Stale readings</span>
          <span class="value" id="kpi-tanks-stale">-</span>
        </div></div>

        <div class="card span-12">
          <div class="card-head">
            <h2>Tank levels</h2>
            <div class="controls">
              <input id="tanks-search" type="search" placeholder="search tank, depot, product" />
              <select id="tanks-status">
                <option value="">all statuses</option>
                <option value="critical">critical</option>
                <option value="low">low</option>
                <option value="watch">watch</option>
                <option value="ok">ok</option>
              </select>
              <button class="btn" id="tanks-export">Export CSV</button>
            </div>
          </div>
          <div class="card-body">
            <div id="tanks-table"></div>
            <div class="pager">
              <span id="tanks-meta"></span>
              <button class="btn" id="tanks-prev">Prev</button>
              <button class="btn" id="tanks-next">Next</button>
            </div>
          </div>
        </div>

        <div class="card span-12">
          <div class="card-head">
            <h2>Tank level history</h2>
            <div class="controls">
              <select id="tank-chart-tank"></select>
              <select id="tank-chart-days">
                <option value="7">7 days</option>
                <option value="14">14 days</option>
                <option value="30">30 days</option>
              </select>
            </div>
          </div>
          <div class="card-body">
            <div id="tank-chart" class="bars"></div>
            <div id="tank-chart-empty" class="empty" style="display:none">no history for this tank</div>
          </div>
        </div>
      </div>
    </section>

    <section id="tab-drivers" class="tab-panel">
      <div class="grid">
        <div class="card span-12">
          <div class="card-head">
            <h2>Driver safety</h2>
            <div class="controls">
              <input id="drivers-search" type="search" placeholder="search driver, fleet, depot" />
              <select id="drivers-risk">
                <option value="">all risk tiers</option>
                <option value="critical">critical</option>
                <option value="high">high</option>
                <option value="medium">medium</option>
                <option value="low">low</option>
              </select>
              <button class="btn" id="drivers-export">Export CSV</button>
            </div>
          </div>
          <div class="card-body">
            <div id="drivers-table"></div>
            <div class="pager">
              <span id="drivers-meta"></span>
              <button class="btn" id="drivers-prev">Prev</button>
              <button class="btn" id="drivers-next">Next</button>
            </div>
          </div>
        </div>

        <div class="card span-12">
          <div class="card-head">
            <h2>Driver events</h2>
            <span class="muted" id="driver-events-title">select a driver above</span>
          </div>
          <div class="card-body"><div id="driver-events-table"></div></div>
        </div>
      </div>
    </section>

    <section id="tab-maintenance" class="tab-panel">
      <div class="grid">
        <div class="card span-12">
          <div class="card-head">
            <h2>Vehicles</h2>
            <div class="controls">
              <input id="vehicles-search" type="search" placeholder="search rego, make, model" />
              <select id="vehicles-urgency">
                <option value="">all service urgency</option>
                <option value="overdue">overdue</option>
                <option value="due_soon">due soon</option>
                <option value="due_later">due later</option>
                <option value="scheduled">scheduled</option>
              </select>
              <button class="btn" id="vehicles-export">Export CSV</button>
            </div>
          </div>
          <div class="card-body">
            <div id="vehicles-table"></div>
            <div class="pager">
              <span id="vehicles-meta"></span>
              <button class="btn" id="vehicles-prev">Prev</button>
              <button class="btn" id="vehicles-next">Next</button>
            </div>
          </div>
        </div>

        <div class="card span-12">
          <div class="card-head">
            <h2>Maintenance items</h2>
            <div class="controls">
              <input id="maintenance-search" type="search" placeholder="search work type, rego" />
              <label><input id="maintenance-open" type="checkbox" checked /> open only</label>
              <input id="maintenance-month" type="month" />
              <button class="btn" id="maintenance-export">Export CSV</button>
            </div>
          </div>
          <div class="card-body">
            <div id="maintenance-table"></div>
            <div class="pager">
              <span id="maintenance-meta"></span>
              <button class="btn" id="maintenance-prev">Prev</button>
              <button class="btn" id="maintenance-next">Next</button>
            </div>
          </div>
        </div>
      </div>
    </section>

    <section id="tab-deliveries" class="tab-panel">
      <div class="grid">
        <div class="card span-12">
          <div class="card-head">
            <h2>Deliveries</h2>
            <div class="controls">
              <input id="deliveries-search" type="search" placeholder="search docket, carrier, depot" />
              <select id="deliveries-status">
                <option value="">all statuses</option>
                <option value="delivered">delivered</option>
                <option value="in_transit">in transit</option>
                <option value="scheduled">scheduled</option>
                <option value="cancelled">cancelled</option>
              </select>
              <button class="btn" id="deliveries-export">Export CSV</button>
            </div>
          </div>
          <div class="card-body">
            <div id="deliveries-table"></div>
            <div class="pager">
              <span id="deliveries-meta"></span>
              <button class="btn" id="deliveries-prev">Prev</button>
              <button class="btn" id="deliveries-next">Next</button>
            </div>
          </div>
        </div>

        <div class="card span-8">
          <div class="card-head"><h2>Monthly delivered volume</h2></div>
          <div class="card-body">
            <div id="deliveries-chart" class="bars"></div>
            <div id="deliveries-chart-empty" class="empty" style="display:none">no delivery history</div>
          </div>
        </div>

        <div class="card span-4">
          <div class="card-head"><h2>Top carriers (12m)</h2></div>
          <div class="card-body"><div id="carrier-volume-table"></div></div>
        </div>
      </div>
    </section>

    <section id="tab-reports" class="tab-panel">
      <div class="grid">
        <div class="card span-12">
          <div class="card-head">
            <h2>Fleet summary report</h2>
            <div class="controls">
              <input id="report-month" type="month" />
              <button class="btn primary" id="report-run">Run</button>
            </div>
          </div>
          <div class="card-body">
            <div class="grid">
              <div class="span-12" id="report-kpis"></div>
              <div class="span-12"><div id="report-timeseries"></div></div>
              <div class="span-12"><div id="report-integrations" class="mono muted"></div></div>
            </div>
          </div>
        </div>
      </div>
    </section>

    <section id="tab-services" class="tab-panel">
      <div class="grid">
        <div class="card span-12">
          <div class="card-head">
            <h2>Service status</h2>
            <button class="btn" id="services-refresh">Refresh</button>
          </div>
          <div class="card-body"><div id="services-table"></div></div>
        </div>
        <div class="card span-6">
          <div class="card-head"><h2>Carrier mapping</h2></div>
          <div class="card-body"><div id="mapping-status" class="mono"></div></div>
        </div>
        <div class="card span-6">
          <div class="card-head"><h2>Risk thresholds</h2></div>
          <div class="card-body"><div id="thresholds-table"></div></div>
        </div>
      </div>
    </section>
  </main>

  <footer>
    <div class="container">
      Fleet Operations Dashboard — <a href="/metrics">metrics</a> · <a href="/health">health</a>
    </div>
  </footer>

  <script>
    const text = (id, v) => document.getElementById(id).textContent = v;
    const html = (id, v) => document.getElementById(id).innerHTML = v;
    const q = (s) => document.querySelector(s);
    const qq = (s) => Array.from(document.querySelectorAll(s));

    async function getJSON(url) {
      const r = await fetch(url);
      if (!r.ok) throw new Error(url + " -> " + r.status);
      return r.json();
    }

    function esc(v) {
      return String(v == null ? '' : v)
        .replaceAll('&', '&amp;').replaceAll('<', '&lt;').replaceAll('>', '&gt;');
    }

    function fmtNum(v, digits) {
      if (v == null || !Number.isFinite(Number(v))) return '-';
      return Number(v).toLocaleString(undefined, { maximumFractionDigits: digits == null ? 1 : digits });
    }

    function fmtDate(v) {
      if (!v) return '-';
      const d = new Date(v);
      if (Number.isNaN(d.getTime())) return esc(v);
      return d.toISOString().slice(0, 16).replace('T', ' ');
    }

    function statusPill(ok) {
      return '<span class="pill ' + (ok ? 'ok' : 'bad') + '">' + (ok ? 'ok' : 'down') + '</span>';
    }

    function bandPill(v) {
      const band = String(v || '').toLowerCase();
      let cls = 'muted';
      if (band === 'ok' || band === 'delivered' || band === 'completed' || band === 'scheduled') cls = 'ok';
      else if (band === 'low' || band === 'watch' || band === 'medium' || band === 'due_soon' || band === 'due_later' || band === 'in_transit') cls = 'warn';
      else if (band === 'critical' || band === 'high' || band === 'overdue' || band === 'cancelled') cls = 'bad';
      if (!band) return '<span class="pill muted">unknown</span>';
      return '<span class="pill ' + cls + '">' + esc(band.replaceAll('_', ' ')) + '</span>';
    }

    // Thresholds arrive from the settings endpoint; classification happens
    // client side with the same cut points the API uses for filtering.
    let thresholds = {
      risk_secondary_hot_count: 3,
      tank_critical_percent: 10,
      tank_low_percent: 25,
      tank_watch_percent: 40,
      maintenance_due_soon_days: 7,
      maintenance_due_later_days: 30,
    };

    function tankStatus(r) {
      const pct = Number(r.percent_full);
      if (r.percent_full == null || !Number.isFinite(pct)) return '';
      if (pct < thresholds.tank_critical_percent) return 'critical';
      if (pct < thresholds.tank_low_percent) return 'low';
      if (pct < thresholds.tank_watch_percent) return 'watch';
      return 'ok';
    }

    function driverSecondary(r) {
      return Number(r.harsh_braking || 0) + Number(r.distraction || 0) +
        Number(r.fatigue || 0) + Number(r.speeding || 0);
    }

    function driverRisk(r) {
      if (Number(r.high_risk_events || 0) > 0) return 'critical';
      const sec = driverSecondary(r);
      if (sec > thresholds.risk_secondary_hot_count) return 'high';
      if (sec > 0) return 'medium';
      return 'low';
    }

    function dueUrgency(v) {
      if (!v) return '';
      const due = new Date(v);
      if (Number.isNaN(due.getTime())) return '';
      const days = Math.floor((due.getTime() - Date.now()) / 86400000);
      if (days < 0) return 'overdue';
      if (days <= thresholds.maintenance_due_soon_days) return 'due_soon';
      if (days <= thresholds.maintenance_due_later_days) return 'due_later';
      return 'scheduled';
    }

    function switchTab(tab) {
      qq('.tab-btn[data-tab]').forEach((b) => b.classList.toggle('active', b.dataset.tab === tab));
      qq('.tab-panel').forEach((p) => p.classList.toggle('active', p.id === 'tab-' + tab));
      if (tab === 'drivers') loadDrivers();
      if (tab === 'maintenance') { loadVehicles(); loadMaintenance(); }
      if (tab === 'deliveries') { loadDeliveries(); loadDeliveriesChart(); }
      if (tab === 'reports') runReport();
      if (tab === 'services') loadServicesStatus();
    }

    // Shared table state keyed by section name.
    const tables = {
      tanks: { sort: 'percent_full', dir: 'asc', page: 1 },
      drivers: { sort: 'high_risk_events', dir: 'desc', page: 1 },
      vehicles: { sort: 'next_service_due', dir: 'asc', page: 1 },
      maintenance: { sort: 'due_date', dir: 'asc', page: 1 },
      deliveries: { sort: 'delivered_at', dir: 'desc', page: 1 },
    };

    function tableQuery(name, extra) {
      const st = tables[name];
      const params = new URLSearchParams({ sort: st.sort, dir: st.dir, page: String(st.page) });
      const search = q('#' + name + '-search');
      if (search && search.value.trim()) params.set('search', search.value.trim());
      Object.entries(extra || {}).forEach(([k, v]) => { if (v) params.set(k, v); });
      return params;
    }

    function renderTable(el, columns, rows, name, onRow) {
      if (!rows || !rows.length) {
        el.innerHTML = '<div class="empty">no rows match the current filters</div>';
        return;
      }
      const st = tables[name] || {};
      let out = '<table><thead><tr>';
      columns.forEach((c) => {
        const sorted = st.sort === c.key ? ' sorted' + (st.dir === 'asc' ? ' asc' : '') : '';
        out += '<th class="' + sorted.trim() + '" data-key="' + c.key + '">' + esc(c.label) + '</th>';
      });
      out += '</tr></thead><tbody>';
      rows.forEach((row, i) => {
        out += '<tr data-row="' + i + '">';
        columns.forEach((c) => { out += '<td>' + c.render(row) + '</td>'; });
        out += '</tr>';
      });
      out += '</tbody></table>';
      el.innerHTML = out;
      if (name) {
        el.querySelectorAll('th[data-key]').forEach((th) => {
          th.addEventListener('click', () => {
            const key = th.getAttribute('data-key');
            const st2 = tables[name];
            if (st2.sort === key) st2.dir = st2.dir === 'asc' ? 'desc' : 'asc';
            else { st2.sort = key; st2.dir = 'desc'; }
            st2.page = 1;
            reload(name);
          });
        });
      }
      if (onRow) {
        el.querySelectorAll('tr[data-row]').forEach((tr) => {
          tr.style.cursor = 'pointer';
          tr.addEventListener('click', () => onRow(rows[Number(tr.getAttribute('data-row'))]));
        });
      }
    }

    function renderMeta(name, meta) {
      const el = document.getElementById(name + '-meta');
      if (!el || !meta) return;
      el.textContent = 'page ' + meta.page + '/' + Math.max(1, meta.pages) +
        ' · ' + meta.filtered + ' of ' + meta.total + ' rows';
      tables[name].pages = meta.pages || 1;
    }

    function wirePager(name, loader) {
      q('#' + name + '-prev').addEventListener('click', () => {
        if (tables[name].page > 1) { tables[name].page--; loader(); }
      });
      q('#' + name + '-next').addEventListener('click', () => {
        if (tables[name].page < (tables[name].pages || 1)) { tables[name].page++; loader(); }
      });
    }

    function reload(name) {
      if (name === 'tanks') loadTanks();
      if (name === 'drivers') loadDrivers();
      if (name === 'vehicles') loadVehicles();
      if (name === 'maintenance') loadMaintenance();
      if (name === 'deliveries') loadDeliveries();
    }

    function exportURL(path, name, extra) {
      const params = tableQuery(name, extra);
      params.delete('page');
      return path + '?' + params.toString();
    }

    async function loadTanks() {
      try {
        const res = await getJSON('/api/v1/tanks?' + tableQuery('tanks', { status: q('#tanks-status').value }));
        const rows = res.data || [];
        renderMeta('tanks', res.meta);
        const groups = (res.summary && res.summary.group_counts) || {};
        text('kpi-tanks-total', fmtNum(res.meta ? res.meta.total : rows.length, 0));
        text('kpi-tanks-critical', fmtNum(groups.critical || 0, 0));
        text('kpi-tanks-low', fmtNum(groups.low || 0, 0));
        text('kpi-tanks-stale', fmtNum(rows.filter((r) => r.stale).length, 0));
        renderTable(q('#tanks-table'), [
          { key: 'name', label: 'Tank', render: (r) => esc(r.name) + ' <span class="mono muted">' + esc(r.tank_id) + '</span>' },
          { key: 'depot', label: 'Depot', render: (r) => esc(r.depot) },
          { key: 'product', label: 'Product', render: (r) => esc(r.product) },
          { key: 'percent_full', label: '% full', render: (r) => fmtNum(r.percent_full) },
          { key: 'current_litres', label: 'Litres', render: (r) => fmtNum(r.current_litres, 0) + ' / ' + fmtNum(r.capacity_litres, 0) },
          { key: 'status', label: 'Status', render: (r) => bandPill(tankStatus(r)) + (r.stale ? ' <span class="pill muted">stale</span>' : '') },
          { key: 'last_reading_at', label: 'Last reading', render: (r) => fmtDate(r.last_reading_at) },
        ], rows, 'tanks', (row) => { q('#tank-chart-tank').value = row.tank_id; loadTankChart(); });
        const sel = q('#tank-chart-tank');
        if (!sel.options.length && rows.length) {
          sel.innerHTML = rows.map((r) => '<option value="' + esc(r.tank_id) + '">' + esc(r.name) + '</option>').join('');
          loadTankChart();
        }
        text('generated-at', new Date().toISOString().slice(0, 19) + 'Z');
      } catch (err) {
        q('#tanks-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    function renderBars(el, emptyEl, points, labelOf, valueOf) {
      if (!points || !points.length) {
        el.innerHTML = '';
        emptyEl.style.display = '';
        return;
      }
      emptyEl.style.display = 'none';
      const max = Math.max(...points.map(valueOf), 1);
      el.innerHTML = points.map((p) => {
        const h = Math.max(2, Math.round((valueOf(p) / max) * 130));
        return '<div class="bar" style="height:' + h + 'px" title="' + esc(labelOf(p)) + ': ' + fmtNum(valueOf(p)) + '">' +
          '<span>' + esc(labelOf(p)) + '</span></div>';
      }).join('');
    }

    async function loadTankChart() {
      const tank = q('#tank-chart-tank').value;
      if (!tank) return;
      try {
        const res = await getJSON('/api/v1/charts/tank-levels?tank=' + encodeURIComponent(tank) +
          '&days=' + q('#tank-chart-days').value);
        const daily = (res.data && res.data.daily) || [];
        renderBars(q('#tank-chart'), q('#tank-chart-empty'), daily,
          (p) => String(p.date || '').slice(5, 10),
          (p) => Number(p.avg_percent || 0));
      } catch (err) {
        q('#tank-chart').innerHTML = '';
        q('#tank-chart-empty').style.display = '';
      }
    }

    async function loadDrivers() {
      try {
        const res = await getJSON('/api/v1/drivers?' + tableQuery('drivers', { risk: q('#drivers-risk').value }));
        renderMeta('drivers', res.meta);
        renderTable(q('#drivers-table'), [
          { key: 'name', label: 'Driver', render: (r) => esc(r.name) + ' <span class="mono muted">' + esc(r.driver_id) + '</span>' },
          { key: 'fleet', label: 'Fleet', render: (r) => esc(r.fleet) },
          { key: 'depot', label: 'Depot', render: (r) => esc(r.depot) },
          { key: 'safety_score', label: 'Score', render: (r) => fmtNum(r.safety_score) },
          { key: 'high_risk_events', label: 'High risk', render: (r) => fmtNum(r.high_risk_events, 0) },
          { key: 'secondary_events', label: 'Secondary', render: (r) => fmtNum(driverSecondary(r), 0) },
          { key: 'risk', label: 'Risk', render: (r) => bandPill(driverRisk(r)) },
          { key: 'last_event_at', label: 'Last event', render: (r) => fmtDate(r.last_event_at) },
        ], res.data || [], 'drivers', loadDriverEvents);
      } catch (err) {
        q('#drivers-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadDriverEvents(driver) {
      text('driver-events-title', driver.name + ' (' + driver.driver_id + ')');
      try {
        const res = await getJSON('/api/v1/drivers/' + encodeURIComponent(driver.driver_id) + '/events');
        const rows = (res.data && res.data.events) || [];
        renderTable(q('#driver-events-table'), [
          { key: 'occurred_at', label: 'When', render: (r) => fmtDate(r.occurred_at) },
          { key: 'event_type', label: 'Type', render: (r) => esc(r.event_type) },
          { key: 'provider', label: 'Provider', render: (r) => esc(r.provider) },
          { key: 'vehicle_id', label: 'Vehicle', render: (r) => '<span class="mono">' + esc(r.vehicle_id) + '</span>' },
          { key: 'notes', label: 'Notes', render: (r) => esc(r.notes) },
        ], rows, null, null);
      } catch (err) {
        q('#driver-events-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadVehicles() {
      try {
        const res = await getJSON('/api/v1/vehicles?' + tableQuery('vehicles', { service_urgency: q('#vehicles-urgency').value }));
        renderMeta('vehicles', res.meta);
        renderTable(q('#vehicles-table'), [
          { key: 'rego', label: 'Rego', render: (r) => esc(r.rego) + ' <span class="mono muted">' + esc(r.vehicle_id) + '</span>' },
          { key: 'make', label: 'Make / model', render: (r) => esc(r.make) + ' ' + esc(r.model) },
          { key: 'fleet', label: 'Fleet', render: (r) => esc(r.fleet) },
          { key: 'odometer_km', label: 'Odometer', render: (r) => fmtNum(r.odometer_km, 0) + ' km' },
          { key: 'next_service_due', label: 'Next service', render: (r) => fmtDate(r.next_service_due) + ' ' + bandPill(dueUrgency(r.next_service_due)) },
          { key: 'rego_expiry', label: 'Rego expiry', render: (r) => fmtDate(r.rego_expiry) + ' ' + bandPill(dueUrgency(r.rego_expiry)) },
          { key: 'open_items', label: 'Open items', render: (r) => fmtNum(r.open_items, 0) },
        ], res.data || [], 'vehicles', null);
      } catch (err) {
        q('#vehicles-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadMaintenance() {
      try {
        const extra = {};
        if (q('#maintenance-open').checked) extra.open = 'true';
        if (q('#maintenance-month').value) extra.month = q('#maintenance-month').value;
        const res = await getJSON('/api/v1/maintenance?' + tableQuery('maintenance', extra));
        renderMeta('maintenance', res.meta);
        renderTable(q('#maintenance-table'), [
          { key: 'due_date', label: 'Due', render: (r) => fmtDate(r.due_date) },
          { key: 'urgency', label: 'Urgency', render: (r) => r.completed_at ? bandPill('completed') : bandPill(dueUrgency(r.due_date)) },
          { key: 'rego', label: 'Rego', render: (r) => esc(r.rego) },
          { key: 'work_type', label: 'Work type', render: (r) => esc(r.work_type) },
          { key: 'description', label: 'Description', render: (r) => esc(r.description) },
          { key: 'cost_dollars', label: 'Cost', render: (r) => r.cost_dollars == null ? '-' : '$' + fmtNum(r.cost_dollars, 2) },
          { key: 'completed_at', label: 'Completed', render: (r) => fmtDate(r.completed_at) },
        ], res.data || [], 'maintenance', null);
      } catch (err) {
        q('#maintenance-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadDeliveries() {
      try {
        const res = await getJSON('/api/v1/deliveries?' + tableQuery('deliveries', { status: q('#deliveries-status').value }));
        renderMeta('deliveries', res.meta);
        renderTable(q('#deliveries-table'), [
          { key: 'delivered_at', label: 'Delivered', render: (r) => fmtDate(r.delivered_at) },
          { key: 'docket_number', label: 'Docket', render: (r) => '<span class="mono">' + esc(r.docket_number) + '</span>' },
          { key: 'carrier', label: 'Carrier', render: (r) => esc(r.carrier) },
          { key: 'depot', label: 'Depot', render: (r) => esc(r.depot) },
          { key: 'product', label: 'Product', render: (r) => esc(r.product) },
          { key: 'volume_litres', label: 'Litres', render: (r) => fmtNum(r.volume_litres, 0) },
          { key: 'amount_dollars', label: 'Amount', render: (r) => r.amount_dollars == null ? '-' : '$' + fmtNum(r.amount_dollars, 2) },
          { key: 'status', label: 'Status', render: (r) => bandPill(r.status) },
        ], res.data || [], 'deliveries', null);
      } catch (err) {
        q('#deliveries-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadDeliveriesChart() {
      try {
        const res = await getJSON('/api/v1/charts/deliveries?months=12');
        const monthly = (res.data && res.data.monthly) || [];
        renderBars(q('#deliveries-chart'), q('#deliveries-chart-empty'), monthly,
          (p) => p.month, (p) => Number(p.volume_litres || 0));
        const carriers = (res.data && res.data.carriers) || [];
        renderTable(q('#carrier-volume-table'), [
          { key: 'carrier', label: 'Carrier', render: (r) => esc(r.carrier) },
          { key: 'deliveries', label: 'Deliveries', render: (r) => fmtNum(r.deliveries, 0) },
          { key: 'volume_litres', label: 'Litres', render: (r) => fmtNum(r.volume_litres, 0) },
        ], carriers, null, null);
      } catch (err) {
        q('#deliveries-chart-empty').style.display = '';
      }
    }

    async function runReport() {
      const month = q('#report-month').value;
      const url = '/api/v1/reports/fleet-summary' + (month ? '?month=' + month : '');
      try {
        const res = await getJSON(url);
        const kpis = res.kpis || {};
        html('report-kpis', '<div class="grid">' + Object.entries(kpis).map(([k, v]) =>
          '<div class="card span-3"><div class="card-body kpi">' +
          '<span class="label">' + esc(k.replaceAll('_', ' ')) + '</span>' +
          '<span class="value">' + fmtNum(v) + '</span></div></div>').join('') + '</div>');
        renderTable(q('#report-timeseries'), [
          { key: 'date', label: 'Date', render: (r) => esc(r.date) },
          { key: 'high_risk', label: 'High risk', render: (r) => fmtNum(r.high_risk, 0) },
          { key: 'secondary', label: 'Secondary', render: (r) => fmtNum(r.secondary, 0) },
        ], res.timeseries || [], null, null);
        html('report-integrations', Object.entries(res.integrations || {}).map(([k, v]) =>
          esc(k) + ': ' + (v.ok ? 'ok' : (v.error || 'disabled'))).join('<br />'));
      } catch (err) {
        html('report-kpis', '<div class="empty">' + esc(err.message) + '</div>');
      }
    }

    async function loadServicesStatus() {
      try {
        const res = await getJSON('/api/v1/status/services');
        const services = res.services || {};
        const rows = Object.entries(services).map(([name, s]) => ({ name, ...s }));
        renderTable(q('#services-table'), [
          { key: 'name', label: 'Service', render: (r) => esc(r.name) },
          { key: 'enabled', label: 'Enabled', render: (r) => r.enabled ? 'yes' : 'no' },
          { key: 'ok', label: 'Status', render: (r) => r.enabled ? statusPill(r.ok) : '<span class="pill muted">disabled</span>' },
          { key: 'detail', label: 'Detail', render: (r) => r.error ? esc(r.error) :
            '<span class="mono">' + esc(JSON.stringify(r.stats || r.targets_up != null && (r.targets_up + '/' + r.targets_total + ' targets up') || '')) + '</span>' },
        ], rows, null, null);
        const mapping = await getJSON('/api/v1/status/carrier-mapping');
        html('mapping-status', 'mode: ' + esc(mapping.mode) + '<br />enabled: ' + mapping.enabled +
          (mapping.sqlite_path ? '<br />sqlite: ' + esc(mapping.sqlite_path) : ''));
      } catch (err) {
        q('#services-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    async function loadRiskThresholds() {
      try {
        const res = await getJSON('/api/v1/settings/risk-thresholds');
        thresholds = Object.assign({}, thresholds, res.data || {});
        const rows = Object.entries(res.data || {}).map(([k, v]) => ({ k, v }));
        renderTable(q('#thresholds-table'), [
          { key: 'k', label: 'Threshold', render: (r) => '<span class="mono">' + esc(r.k) + '</span>' },
          { key: 'v', label: 'Value', render: (r) => fmtNum(r.v) },
        ], rows, null, null);
      } catch (err) {
        q('#thresholds-table').innerHTML = '<div class="empty">' + esc(err.message) + '</div>';
      }
    }

    qq('.tab-btn[data-tab]').forEach((b) => b.addEventListener('click', () => switchTab(b.dataset.tab)));

    let searchTimer = null;
    ['tanks', 'drivers', 'vehicles', 'maintenance', 'deliveries'].forEach((name) => {
      const el = q('#' + name + '-search');
      el.addEventListener('input', () => {
        clearTimeout(searchTimer);
        searchTimer = setTimeout(() => { tables[name].page = 1; reload(name); }, 300);
      });
      wirePager(name, () => reload(name));
    });

    q('#tanks-status').addEventListener('change', () => { tables.tanks.page = 1; loadTanks(); });
    q('#drivers-risk').addEventListener('change', () => { tables.drivers.page = 1; loadDrivers(); });
    q('#vehicles-urgency').addEventListener('change', () => { tables.vehicles.page = 1; loadVehicles(); });
    q('#maintenance-open').addEventListener('change', () => { tables.maintenance.page = 1; loadMaintenance(); });
    q('#maintenance-month').addEventListener('change', () => { tables.maintenance.page = 1; loadMaintenance(); });
    q('#deliveries-status').addEventListener('change', () => { tables.deliveries.page = 1; loadDeliveries(); });
    q('#tank-chart-tank').addEventListener('change', loadTankChart);
    q('#tank-chart-days').addEventListener('change', loadTankChart);
    q('#services-refresh').addEventListener('click', loadServicesStatus);
    q('#report-run').addEventListener('click', runReport);

    q('#tanks-export').addEventListener('click', () => {
      window.location = exportURL('/api/v1/tanks/export.csv', 'tanks', { status: q('#tanks-status').value });
    });
    q('#drivers-export').addEventListener('click', () => {
      window.location = exportURL('/api/v1/drivers/export.csv', 'drivers', { risk: q('#drivers-risk').value });
    });
    q('#vehicles-export').addEventListener('click', () => {
      window.location = exportURL('/api/v1/vehicles/export.csv', 'vehicles', { service_urgency: q('#vehicles-urgency').value });
    });
    q('#maintenance-export').addEventListener('click', () => {
      const extra = {};
      if (q('#maintenance-open').checked) extra.open = 'true';
      if (q('#maintenance-month').value) extra.month = q('#maintenance-month').value;
      window.location = exportURL('/api/v1/maintenance/export.csv', 'maintenance', extra);
    });
    q('#deliveries-export').addEventListener('click', () => {
      window.location = exportURL('/api/v1/deliveries/export.csv', 'deliveries', { status: q('#deliveries-status').value });
    });

    loadRiskThresholds().finally(() => loadTanks());
    setInterval(loadTanks, 30000);
    setInterval(loadServicesStatus, 60000);
  </script>
</body>
</html>`
