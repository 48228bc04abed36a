package customize

import "regexp"

const (
	iptablesPackagePatternConstant       = `iptables\s*\\?`
	ipsetPackagePatternConstant          = `ipset\s*\\?`
	iprouteTwoPackagePatternConstant     = `iproute2\s*\\?`
	dnsutilsPackagePatternConstant       = `dnsutils\s*\\?`
	aggregatePackagePatternConstant      = `aggregate\s*\\?`
	netAdminCapabilityPatternConstant    = `--cap-add=NET_ADMIN`
	netRawCapabilityPatternConstant      = `--cap-add=NET_RAW`
	initFirewallScriptPatternConstant    = `init-firewall\.sh`
	genericFirewallScriptPatternConstant = `firewall.*\.sh`
	postStartFirewallPatternConstant     = `postStartCommand.*firewall`
	waitForPostStartPatternConstant      = `waitFor.*postStartCommand`
)

var firewallPatterns = []*regexp.Regexp{
	regexp.MustCompile(iptablesPackagePatternConstant),
	regexp.MustCompile(ipsetPackagePatternConstant),
	regexp.MustCompile(iprouteTwoPackagePatternConstant),
	regexp.MustCompile(dnsutilsPackagePatternConstant),
	regexp.MustCompile(aggregatePackagePatternConstant),
	regexp.MustCompile(netAdminCapabilityPatternConstant),
	regexp.MustCompile(netRawCapabilityPatternConstant),
	regexp.MustCompile(initFirewallScriptPatternConstant),
	regexp.MustCompile(genericFirewallScriptPatternConstant),
	regexp.MustCompile(postStartFirewallPatternConstant),
	regexp.MustCompile(waitForPostStartPatternConstant),
}

// MatchFirewallPatterns reports the first match of every firewall pattern that
// occurs in content, one entry per matching pattern.
func MatchFirewallPatterns(content string) []string {
	var patternMatches []string
	for _, firewallPattern := range firewallPatterns {
		if firstMatch := firewallPattern.FindString(content); len(firstMatch) > 0 {
			patternMatches = append(patternMatches, firstMatch)
		}
	}
	return patternMatches
}
