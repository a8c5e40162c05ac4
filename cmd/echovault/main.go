// Package main 启动应用程序
package main

import "github.com/sujaykar/echovault/pkg/cmd"

//	@title			EchoVault API
//	@version		1.0
//	@description	EchoVault 是一个回声（语音/媒体）存储服务，提供文件上传、记录登记、转写文本管理等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	sujaykar
//	@contact.email	sujay.kar.dev@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
