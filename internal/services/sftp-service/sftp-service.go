package sftpservice

import (
	"errors"
	"fmt"

	"wms-alloc/internal/config"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// NewClient dials the order file drop host. Callers own both returned
// connections and must close them, sftp first.
func NewClient(cfg config.Config) (*sftp.Client, *ssh.Client, error) {
	if cfg.SFTPHost == `` || cfg.SFTPUser == `` {
		return nil, nil, errors.New("sftp host/user not configured")
	}

	sshConfig := &ssh.ClientConfig{
		User: cfg.SFTPUser,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.SFTPPassword),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	sshConn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%s", cfg.SFTPHost, cfg.SFTPPort), sshConfig)
	if err != nil {
		return nil, nil, err
	}

	sftpClient, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, nil, err
	}

	return sftpClient, sshConn, nil
}
