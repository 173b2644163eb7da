// Package database provides the sqlite-backed key/value settings table.
//
// The word libraries themselves live in plain files (see package library);
// the database only keeps small application preferences such as the name of
// the library the user selected last.
//
// # Usage
//
//	db, err := database.NewDatabase("./wordbook.db", logger)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	err = db.SetSetting(entities.SettingKeyCurrentWordLib, "english")
//	setting, err := db.GetSetting(entities.SettingKeyCurrentWordLib)
package database
