// Package config loads the list of domains sgrenew keeps renewed, together
// with the security group and verification port of each domain.
//
// The primary format is INI:
//
//	[Domains]
//	example.com
//	www.example.org
//
//	[example.com]
//	SecurityGroupId = sg-0123456789abcdef0
//	VerificationPort = 80
//
//	[www.example.org]
//	SecurityGroupId = sg-0fedcba9876543210
//	VerificationPort = 80
//	CertPath = /etc/letsencrypt/live/www.example.org-0001/cert.pem
//
//	[Settings]
//	RenewalMarginDays = 29
//	SettleDelay = 15s
//	CertbotPath = /usr/bin/certbot
//	Region = eu-west-1
//
// Keys of the [Domains] section name the domains; their values are ignored,
// so bare keys are accepted. Section and key names are case-insensitive and
// domain names are lowercased. The [Settings] section is optional.
//
// The same structure can be written as YAML when the file name ends in
// .yaml or .yml:
//
//	settings:
//	  renewal_margin_days: 29
//	  settle_delay: 15s
//	domains:
//	  - name: example.com
//	    security_group_id: sg-0123456789abcdef0
//	    verification_port: 80
//
// # Usage
//
//	cfg, err := config.Load("/etc/sgrenew/config.ini")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range cfg.Domains {
//	    fmt.Println(d.Name, cfg.CertPath(d))
//	}
//
// A loaded Config is validated and must not be modified afterwards; every
// error returned by Load carries the CONFIG error code.
package config
