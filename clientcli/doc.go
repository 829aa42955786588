// Package clientcli provides a client library for interacting with filedrop servers.
//
// It supports upload and download operations against the plain HTTP routes
// of a filedrop server. The package includes profile-based configuration
// for managing connections to multiple servers.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	client, err := clientcli.New(&clientcli.Config{Server: "http://localhost:8000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./report.pdf",
//	})
//	fmt.Println(result.URL)
//
// Download it again by storage name or by the URL the server returned:
//
//	result, _, err := client.Download(ctx, clientcli.DownloadOptions{
//		StorageName: "3F2A9C1B7E4D-report.pdf",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("work")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, result)
package clientcli
