package shell

import (
	"html/template"
	"io"
)

// documentData is passed to the shell document template.
type documentData struct {
	Title      string
	Mode       string
	SocketPath string
	Stylesheet string
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  {{- if .Stylesheet}}
  <link rel="stylesheet" href="{{.Stylesheet}}">
  {{- end}}
</head>
<body>
  <main id="view" data-mode="{{.Mode}}" data-socket="{{.SocketPath}}"></main>
  <script>` + clientScript + `</script>
</body>
</html>
`))

func writeDocument(w io.Writer, data documentData) error {
	return documentTemplate.Execute(w, data)
}

// clientScript is the browser half of the navigation bridge. It owns the
// real history stack and renders the fragments the server sends.
const clientScript = `
(function() {
    'use strict';

    var view = document.getElementById('view');
    var baseTitle = document.title;
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function address() {
        return location.pathname + location.search + location.hash;
    }

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + view.dataset.socket);

        ws.onopen = function() {
            reconnectDelay = 1000;
            send({type: 'init', address: address()});
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'push':
                    history.pushState(null, '', msg.address);
                    break;
                case 'replace':
                    history.replaceState(null, '', msg.address);
                    break;
                case 'back':
                    history.back();
                    break;
                case 'forward':
                    history.forward();
                    break;
                case 'render':
                    view.innerHTML = msg.html;
                    view.dataset.view = msg.view || '';
                    document.title = msg.title ? msg.title + ' · ' + baseTitle : baseTitle;
                    break;
                case 'error':
                    console.error('[viewrouter]', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    window.addEventListener('popstate', function() {
        send({type: 'pop', address: address()});
    });

    document.addEventListener('click', function(e) {
        if (e.defaultPrevented || e.button !== 0 || e.metaKey || e.ctrlKey || e.shiftKey || e.altKey) {
            return;
        }
        var link = e.target.closest('a[data-nav]');
        if (!link) {
            return;
        }
        e.preventDefault();
        send({type: 'navigate', path: link.getAttribute('href'), replace: link.hasAttribute('data-replace')});
    });

    connect();
})();
`
