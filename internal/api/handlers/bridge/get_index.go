package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-sign-bridge/internal/api"
)

// GetIndexRoute 注册配对页面路由
func GetIndexRoute(s *api.Server) *echo.Route {
	return s.Router.Bridge.GET("/", getIndexHandler(s))
}

// getIndexHandler 返回配对页面
// 页面内嵌脚本与浏览器里的钱包扩展交互，依次回调 /wallet、/payload、/submit；
// 页面本身只是协议的浏览器侧对端，桥只关心这三个回调
func getIndexHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.HTML(http.StatusOK, pairingPage)
	}
}

const pairingPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Signing Session Setup</title>
  <style>
    body { font-family: sans-serif; max-width: 40em; margin: 4em auto; }
    #status { padding: 1em; border: 1px solid #ccc; border-radius: 4px; }
  </style>
</head>
<body>
  <h1>Signing Session Setup</h1>
  <p id="status">Connecting to wallet extension&hellip;</p>
  <script>
    const statusEl = document.getElementById('status');
    const setStatus = (msg) => { statusEl.textContent = msg; };

    async function postJSON(path, body) {
      const resp = await fetch(path, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(body),
      });
      const data = await resp.json();
      if (!resp.ok) { throw new Error(data.title || ('request to ' + path + ' failed')); }
      return data;
    }

    async function run() {
      const wallet = window.tradingWallet;
      if (!wallet) {
        setStatus('No wallet extension detected. Install the wallet extension and reload this page.');
        return;
      }

      const identity = await wallet.requestIdentity();
      await postJSON('/wallet', {
        address: identity.address,
        pubkey_base64: identity.pubkeyBase64,
      });
      setStatus('Wallet connected. Review the signing request in your wallet extension.');

      const payloadResp = await fetch('/payload');
      const payload = await payloadResp.json();
      if (!payloadResp.ok) { throw new Error(payload.title || 'payload not ready'); }

      const signed = await wallet.signDirect({
        bodyBytes: payload.body_bytes,
        authInfoBytes: payload.auth_info_bytes,
        accountNumber: payload.account_number,
        chainId: payload.chain_id,
      });

      setStatus('Submitting registration transaction&hellip;');
      const result = await postJSON('/submit', {
        signature_base64: signed.signatureBase64,
        body_bytes: payload.body_bytes,
        auth_info_bytes: payload.auth_info_bytes,
      });

      setStatus('Session created (tx ' + result.tx_hash + '). You can close this tab.');
    }

    run().catch((err) => setStatus('Session setup failed: ' + err.message + '. Restart provisioning from the app.'));
  </script>
</body>
</html>
`
