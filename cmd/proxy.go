package cmd

import u "net/url"

// splitProxyAuth moves credentials embedded in the proxy URL into the
// username/password fields unless those were given separately.
func splitProxyAuth(proxyURL, username, password string) (string, string, string) {
	if proxyURL == "" {
		return proxyURL, username, password
	}
	parsedProxy, err := u.Parse(proxyURL)
	if err != nil || parsedProxy.User == nil || username != "" {
		return proxyURL, username, password
	}
	username = parsedProxy.User.Username()
	if pass, set := parsedProxy.User.Password(); set {
		password = pass
	}
	parsedProxy.User = nil
	return parsedProxy.String(), username, password
}
