package api

const html = `
<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>frps 仪表盘</title>
    <script src="https://cdn.jsdelivr.net/npm/echarts@5.5.0/dist/echarts.min.js"></script>
    <style>
        :root {
            --n-text-color: #333;
            --n-color: #fff;
        }

        @media (prefers-color-scheme: dark) {
            :root {
                --n-text-color: rgba(255, 255, 255, 0.82);
                --n-color: #18181c;
            }
            body { background: #101014; }
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #f5f7fa;
            color: var(--n-text-color);
            min-height: 100vh;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        h1 {
            text-align: center;
            margin-bottom: 20px;
            color: #2196F3;
        }

        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 16px;
            margin-bottom: 20px;
        }

        .stat-card, .chart-card {
            background: var(--n-color);
            border-radius: 12px;
            padding: 20px;
            box-shadow: 0 4px 16px rgba(0,0,0,0.08);
        }

        .stat-value {
            font-size: 1.8em;
            font-weight: bold;
            margin-top: 8px;
        }

        .charts {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(420px, 1fr));
            gap: 20px;
        }

        .chart {
            height: 400px;
        }

        .status {
            text-align: center;
            margin-top: 16px;
            font-size: 0.9em;
            opacity: 0.7;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>frps 仪表盘</h1>
        <div class="summary">
            <div class="stat-card"><div>客户端</div><div class="stat-value" id="clients">-</div></div>
            <div class="stat-card"><div>当前连接</div><div class="stat-value" id="conns">-</div></div>
            <div class="stat-card"><div>版本</div><div class="stat-value" id="version">-</div></div>
        </div>
        <div class="charts">
            <div class="chart-card"><div class="chart" id="traffic-chart"></div></div>
            <div class="chart-card"><div class="chart" id="proxy-chart"></div></div>
        </div>
        <div class="status" id="status">连接中...</div>
    </div>

    <script>
        const trafficChart = echarts.init(document.getElementById('traffic-chart'));
        const proxyChart = echarts.init(document.getElementById('proxy-chart'));
        window.addEventListener('resize', () => {
            trafficChart.resize();
            proxyChart.resize();
        });

        // 读取当前主题的文字颜色，交给服务端生成图表
        function textColor() {
            const el = document.querySelector('body');
            if (!el) return '#333';
            return getComputedStyle(el).getPropertyValue('--n-text-color').trim() || '#333';
        }

        function query() {
            const page = new URLSearchParams(window.location.search);
            const params = new URLSearchParams();
            params.set('text_color', textColor());
            for (const key of ['style', 'locale']) {
                if (page.get(key)) params.set(key, page.get(key));
            }
            return params.toString();
        }

        function apply(data) {
            trafficChart.setOption(data.traffic, true);
            proxyChart.setOption(data.proxy_types, true);
            if (data.stats) {
                document.getElementById('clients').textContent = data.stats.client_counts;
                document.getElementById('conns').textContent = data.stats.cur_conns;
                document.getElementById('version').textContent = data.stats.version || '-';
            }
        }

        async function poll() {
            try {
                const [traffic, proxies, info] = await Promise.all([
                    fetch('/api/chart/traffic?' + query()).then(r => r.json()),
                    fetch('/api/chart/proxy-types?' + query()).then(r => r.json()),
                    fetch('/api/serverinfo').then(r => r.json()),
                ]);
                if (traffic.success && proxies.success) {
                    apply({traffic: traffic.data, proxy_types: proxies.data, stats: info.data});
                }
            } catch (e) {
                document.getElementById('status').textContent = '获取数据失败: ' + e;
            }
        }

        let pollTimer = null;

        function connect() {
            const proto = window.location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(proto + window.location.host + '/api/ws?' + query());
            ws.onopen = () => {
                document.getElementById('status').textContent = '实时更新中';
                if (pollTimer) {
                    clearInterval(pollTimer);
                    pollTimer = null;
                }
            };
            ws.onmessage = (event) => {
                const msg = JSON.parse(event.data);
                if (msg.type === 'charts') apply(msg.data);
            };
            ws.onclose = () => {
                document.getElementById('status').textContent = '连接断开，改为定时刷新';
                if (!pollTimer) {
                    poll();
                    pollTimer = setInterval(poll, 5000);
                }
                setTimeout(connect, 10000);
            };
        }

        connect();
    </script>
</body>
</html>
`
